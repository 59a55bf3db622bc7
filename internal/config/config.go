package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

const (
	// AppName identifies the application in User-Agent strings and
	// exported playlists.
	AppName = "Airwave"

	// Version is the application version baked into the User-Agent.
	Version = "1.0"

	// ServersEnv overrides mirror discovery with a colon-separated host
	// list when set.
	ServersEnv = "AIRWAVE_SERVERS"

	configFileName    = "config.toml"
	favoritesFileName = "starred.json"
)

// Config is the application configuration, read from config.toml in the
// user config directory.
type Config struct {
	Servers  string        `toml:"servers"`
	PageSize int           `toml:"page_size"`
	Offline  bool          `toml:"offline"`
	Logging  LoggingConfig `toml:"logging"`
}

// LoggingConfig controls log level and destination.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		PageSize: 20,
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads a config file, filling defaults for anything unset. A missing
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = Default().PageSize
	}
	return cfg, nil
}

// LoadDefault reads the config from the standard location, falling back to
// defaults when the directory cannot be determined.
func LoadDefault() Config {
	dir, err := Dir()
	if err != nil {
		return Default()
	}
	cfg, err := Load(filepath.Join(dir, configFileName))
	if err != nil {
		logrus.WithError(err).Warn("config unreadable, using defaults")
		return Default()
	}
	return cfg
}

// ServerOverride returns the mirror override list: the environment wins
// over the config file. Empty means discover.
func (c Config) ServerOverride() string {
	if env := strings.TrimSpace(os.Getenv(ServersEnv)); env != "" {
		return env
	}
	return strings.TrimSpace(c.Servers)
}

// UserAgent builds the User-Agent sent with every directory request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", AppName, Version)
}

// Dir returns the application's config directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "airwave")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// FavoritesPath returns the location of the starred-stations file.
func FavoritesPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, favoritesFileName), nil
}

// NewLogger builds the application logger from the logging config.
func NewLogger(cfg LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.WithError(err).Warn("cannot open log file, logging to stderr")
		} else {
			logger.SetOutput(file)
		}
	}
	return logger
}
