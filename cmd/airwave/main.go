package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"airwave/internal/config"
	"airwave/internal/controller"
	"airwave/internal/httpx"
	"airwave/internal/player"
	"airwave/internal/radio"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadDefault()
	logger := config.NewLogger(cfg.Logging)

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	offline := &httpx.Switch{}
	offline.SetOffline(cfg.Offline)

	httpc, err := httpx.NewClient(config.UserAgent(), offline)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	favPath, err := config.FavoritesPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config dir error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	resolver := radio.NewResolver(httpc, cfg.ServerOverride())
	ctrl, err := controller.Connect(ctx, httpc, resolver, afero.NewOsFs(), favPath, cfg.PageSize, logger)
	if err != nil {
		if errors.Is(err, radio.ErrNoConnection) {
			fmt.Fprintf(os.Stderr, "no directory mirror reachable; check your connection or set %s\n", config.ServersEnv)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}

	if err := run(ctx, ctrl, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, ctrl *controller.Controller, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "search":
		if len(rest) == 0 {
			return errors.New("usage: airwave search <text>")
		}
		return printSet(ctx, ctrl.ByText(strings.Join(rest, " ")))
	case "tag":
		if len(rest) == 0 {
			return errors.New("usage: airwave tag <tag>...")
		}
		return printSet(ctx, ctrl.ByTag(rest...))
	case "country":
		if len(rest) != 1 {
			return errors.New("usage: airwave country <code>")
		}
		return printSet(ctx, ctrl.ByCountry(rest[0]))
	case "trending":
		return printSet(ctx, ctrl.Trending())
	case "popular":
		return printSet(ctx, ctrl.Popular())
	case "random":
		return printSet(ctx, ctrl.Random())
	case "tags":
		return printTags(ctx, ctrl)
	case "countries":
		return printCountries(ctx, ctrl)
	case "favorites":
		return runFavorites(ctx, ctrl, rest)
	case "export":
		return ctrl.Favorites().ExportM3U8(os.Stdout)
	case "import":
		return runImport(ctx, ctrl, rest)
	case "play":
		if len(rest) != 1 {
			return errors.New("usage: airwave play <uuid>")
		}
		return runPlay(ctx, ctrl, rest[0])
	case "vote":
		if len(rest) != 1 {
			return errors.New("usage: airwave vote <uuid>")
		}
		ctrl.Vote(ctx, rest[0])
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runFavorites(ctx context.Context, ctrl *controller.Controller, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		stations := ctrl.Favorites().Stations()
		if len(stations) == 0 {
			fmt.Println("no starred stations")
			return nil
		}
		printStations(stations)
		return nil
	case "add":
		if len(args) != 2 {
			return errors.New("usage: airwave favorites add <uuid>")
		}
		station, err := ctrl.Station(ctx, args[1])
		if err != nil {
			return err
		}
		if station == nil {
			return fmt.Errorf("station %s not found", args[1])
		}
		ctrl.Favorites().AddStation(*station)
		return nil
	case "remove":
		if len(args) != 2 {
			return errors.New("usage: airwave favorites remove <uuid>")
		}
		ctrl.Favorites().RemoveStation(radio.Station{UUID: args[1]})
		return nil
	case "searches":
		for _, s := range ctrl.Favorites().SavedSearches() {
			fmt.Println(s)
		}
		return nil
	default:
		return fmt.Errorf("unknown favorites command %q", args[0])
	}
}

func runImport(ctx context.Context, ctrl *controller.Controller, args []string) error {
	in := os.Stdin
	if len(args) == 1 {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	count, err := ctrl.Favorites().ImportStationUUIDs(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("starred %d stations\n", count)
	return nil
}

func runPlay(ctx context.Context, ctrl *controller.Controller, uuid string) error {
	station, err := ctrl.Station(ctx, uuid)
	if err != nil {
		return err
	}
	if station == nil {
		return fmt.Errorf("station %s not found", uuid)
	}

	backend, err := player.New()
	if err != nil {
		return err
	}
	if err := backend.PlayStation(*station); err != nil {
		return err
	}
	ctrl.Click(ctx, station.UUID)

	fmt.Printf("playing %s — press Ctrl-C to stop\n", station.Name)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	return backend.Stop()
}

func printSet(ctx context.Context, set *radio.StationSet) error {
	page, err := set.NextPage(ctx)
	if err != nil {
		return err
	}
	if len(page) == 0 {
		fmt.Println("no results found")
		return nil
	}
	printStations(page)
	return nil
}

func printStations(stations []radio.Station) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tNAME\tCOUNTRY\tCODEC\tBITRATE\tTAGS")
	for _, st := range stations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			st.UUID, st.Name, st.CountryCode, st.Codec, st.Bitrate, st.Tags)
	}
	w.Flush()
}

func printTags(ctx context.Context, ctrl *controller.Controller) error {
	tags, err := ctrl.Tags(ctx, 0, 100)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, tag := range tags {
		fmt.Fprintf(w, "%s\t%d\n", tag.Name, tag.StationCount)
	}
	return w.Flush()
}

func printCountries(ctx context.Context, ctrl *controller.Controller) error {
	countries, err := ctrl.Countries(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, country := range countries {
		fmt.Fprintf(w, "%s\t%s\t%d\n", country.Code, country.Name, country.StationCount)
	}
	return w.Flush()
}

func usage() {
	fmt.Fprintln(os.Stderr, `airwave — internet radio directory client

usage: airwave <command> [args]

browse:
  search <text>       stations matching a name search
  tag <tag>...        stations carrying all given tags
  country <code>      stations for an ISO country code
  trending            stations by recent click trend
  popular             stations by all-time clicks
  random              random stations
  tags                the directory's tag vocabulary
  countries           the directory's country list

favorites:
  favorites [list]    starred stations
  favorites add <uuid>
  favorites remove <uuid>
  favorites searches  saved search strings
  export              write starred stations as M3U8 to stdout
  import [file]       star every station UUID found in file/stdin

playback:
  play <uuid>         play a station via mpv/ffplay
  vote <uuid>         vote for a station`)
}
