package player

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"airwave/internal/radio"
)

// External drives an mpv or ffplay child process.
type External struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	engine   string
	path     string
	lastUUID string
	lastURL  string
}

func newExternal() (*External, error) {
	if path, engine := findBundledPlayer(); path != "" {
		return &External{engine: engine, path: path}, nil
	}
	if path, err := exec.LookPath("mpv"); err == nil {
		return &External{engine: "mpv", path: path}, nil
	}
	if path, err := exec.LookPath("ffplay"); err == nil {
		return &External{engine: "ffplay", path: path}, nil
	}
	return nil, errors.New("mpv or ffplay not found (bundle one or add to PATH)")
}

func (p *External) PlayStation(station radio.Station) error {
	url := station.StreamURL()
	if url == "" {
		return errors.New("station has no stream url")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_ = p.stopLocked()
	p.lastUUID = station.UUID
	p.lastURL = url

	var cmd *exec.Cmd
	switch p.engine {
	case "mpv":
		cmd = exec.Command(p.path, "--no-video", "--quiet", url)
	case "ffplay":
		cmd = exec.Command(p.path, "-nodisp", "-autoexit", "-loglevel", "quiet", url)
	default:
		return errors.New("no playback engine available")
	}

	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}

	p.cmd = cmd
	go func(local *exec.Cmd) {
		_ = local.Wait()
		p.mu.Lock()
		if p.cmd == local {
			p.cmd = nil
		}
		p.mu.Unlock()
	}(cmd)

	return nil
}

func (p *External) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *External) stopLocked() error {
	if p.cmd == nil {
		return nil
	}
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	p.cmd = nil
	return nil
}

func (p *External) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

func (p *External) Current() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUUID, p.lastURL
}

func findBundledPlayer() (string, string) {
	exe, err := os.Executable()
	if err != nil {
		return "", ""
	}
	dir := filepath.Dir(exe)

	candidates := []struct {
		engine string
		name   string
	}{
		{engine: "mpv", name: "mpv"},
		{engine: "mpv", name: "mpv.exe"},
		{engine: "ffplay", name: "ffplay"},
		{engine: "ffplay", name: "ffplay.exe"},
	}

	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate.name)
		if isExecutable(path) {
			return path, candidate.engine
		}
	}

	return "", ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if strings.HasSuffix(strings.ToLower(path), ".exe") {
		return true
	}
	return info.Mode()&0o111 != 0
}
