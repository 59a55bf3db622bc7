package store

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"airwave/internal/radio"
)

func TestFavorites_ExportM3U8(t *testing.T) {
	favs := newTestFavorites(t, afero.NewMemMapFs(), nil)
	favs.AddStation(radio.Station{
		UUID:        "uuid-1",
		Name:        "Jazz24",
		URL:         "http://nominal/stream",
		URLResolved: "http://resolved/stream",
		Favicon:     "http://example.com/logo.png",
	})

	var out strings.Builder
	if err := favs.ExportM3U8(&out); err != nil {
		t.Fatalf("ExportM3U8() error = %v", err)
	}

	want := "#EXTM3U\n" +
		"#EXTENC:UTF-8\n" +
		"#PLAYLIST:Airwave\n" +
		"#EXTINF:-1,Jazz24 - logo=\"http://example.com/logo.png\",STATIONUUID=\"uuid-1\"\n" +
		"http://resolved/stream\n" +
		"#EXTIMG:http://example.com/logo.png\n"
	if out.String() != want {
		t.Errorf("ExportM3U8() =\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestFavorites_ExportM3U8_NominalURLFallback(t *testing.T) {
	favs := newTestFavorites(t, afero.NewMemMapFs(), nil)
	favs.AddStation(radio.Station{UUID: "uuid-1", Name: "Plain FM", URL: "http://nominal/stream"})

	var out strings.Builder
	if err := favs.ExportM3U8(&out); err != nil {
		t.Fatalf("ExportM3U8() error = %v", err)
	}
	if !strings.Contains(out.String(), "\nhttp://nominal/stream\n") {
		t.Errorf("stream line should use the nominal URL:\n%s", out.String())
	}
}

func TestFavorites_ImportStationUUIDs(t *testing.T) {
	dir := &stubDirectory{stations: map[string]radio.Station{
		"9617a958-0601-11e8-ae97-52543be04c81": {UUID: "9617a958-0601-11e8-ae97-52543be04c81", Name: "Found FM"},
	}}
	favs := newTestFavorites(t, afero.NewMemMapFs(), dir)

	input := `#EXTM3U
#EXTINF:-1,Found FM - STATIONUUID="9617A958-0601-11E8-AE97-52543BE04C81"
http://example.com/stream
some noise 00000000-0000-0000-0000-00000000dead more noise
not-a-uuid-at-all
`
	count, err := favs.ImportStationUUIDs(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportStationUUIDs() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (unresolvable uuid skipped)", count)
	}
	// Uppercase token resolves through its canonical lowercase form.
	if !favs.ContainsUUID("9617a958-0601-11e8-ae97-52543be04c81") {
		t.Error("imported station should be starred")
	}
}

func TestFavorites_ImportStationUUIDs_NoTokens(t *testing.T) {
	dir := &stubDirectory{stations: map[string]radio.Station{}}
	favs := newTestFavorites(t, afero.NewMemMapFs(), dir)

	count, err := favs.ImportStationUUIDs(context.Background(), strings.NewReader("nothing here\n"))
	if err != nil {
		t.Fatalf("ImportStationUUIDs() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if got := dir.callCount(); got != 0 {
		t.Errorf("directory queried %d times for empty input, want 0", got)
	}
}
