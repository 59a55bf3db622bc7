package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// playlistName is the #PLAYLIST header of exported M3U8 files.
const playlistName = "Airwave"

var uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// ExportM3U8 renders every starred station as an extended M3U8 playlist.
// The stream line prefers the resolved URL over the nominal one.
func (f *Favorites) ExportM3U8(w io.Writer) error {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXTENC:UTF-8\n")
	b.WriteString("#PLAYLIST:" + playlistName + "\n")

	for _, st := range f.Stations() {
		fmt.Fprintf(&b, "#EXTINF:-1,%s - logo=\"%s\",STATIONUUID=\"%s\"\n", st.Name, st.Favicon, st.UUID)
		b.WriteString(st.StreamURL() + "\n")
		fmt.Fprintf(&b, "#EXTIMG:%s\n", st.Favicon)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ImportStationUUIDs scans arbitrary text for UUID-shaped tokens, resolves
// them against the directory in one batch and stars every hit. Returns how
// many stations were resolved. Unresolvable tokens are skipped silently.
func (f *Favorites) ImportStationUUIDs(ctx context.Context, r io.Reader) (int, error) {
	seen := map[string]struct{}{}
	var ids []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, token := range uuidPattern.FindAllString(scanner.Text(), -1) {
			id, err := uuid.Parse(token)
			if err != nil {
				continue
			}
			canonical := id.String()
			if _, ok := seen[canonical]; ok {
				continue
			}
			seen[canonical] = struct{}{}
			ids = append(ids, canonical)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 || f.dir == nil {
		return 0, nil
	}

	stations, err := f.dir.StationsByUUIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, st := range stations {
		f.AddStation(st)
	}
	return len(stations), nil
}
