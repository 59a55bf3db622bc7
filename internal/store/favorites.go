// Package store keeps the user's starred stations and saved searches in a
// local JSON file. The store stays authoritative for starred stations even
// when the upstream directory drops or rewrites them; a load-time
// reconciliation pass only flags drift, it never overwrites stored fields.
package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"airwave/internal/radio"
)

const (
	appID         = "com.github.airwave"
	schemaVersion = "2.0"
)

// Directory is the slice of the directory client the store needs for
// reconciliation and playlist import.
type Directory interface {
	StationsByUUIDs(ctx context.Context, uuids []string) ([]radio.Station, error)
}

// Favorites is the durable favorites store. Every mutation persists
// synchronously; persistence failures are logged and swallowed so a broken
// disk never blocks a star toggle.
type Favorites struct {
	mu            sync.Mutex
	fs            afero.Fs
	path          string
	dir           Directory
	log           *logrus.Logger
	loadOnce      sync.Once
	order         []string
	items         map[string]*radio.Station
	searchOrder   []string
	searches      map[string]struct{}
	subscribers   []func()
	pendingWrites int
}

type favoritesFile struct {
	App      string          `json:"app"`
	File     string          `json:"file"`
	Schema   string          `json:"schema"`
	Stations []radio.Station `json:"stations"`
	Searches []string        `json:"searches"`
}

// NewFavorites creates a store backed by the given filesystem and path.
// dir may be nil, in which case reconciliation is skipped.
func NewFavorites(fs afero.Fs, path string, dir Directory, log *logrus.Logger) *Favorites {
	return &Favorites{
		fs:       fs,
		path:     path,
		dir:      dir,
		log:      log,
		items:    map[string]*radio.Station{},
		searches: map[string]struct{}{},
	}
}

// Load reads the persisted file (creating it when absent), marks every
// stored station starred and runs one batched reconciliation against the
// directory. A latch makes repeated calls no-ops, so the reconciliation
// request is issued at most once per store.
func (f *Favorites) Load(ctx context.Context) error {
	var err error
	f.loadOnce.Do(func() {
		err = f.load(ctx)
	})
	return err
}

func (f *Favorites) load(ctx context.Context) error {
	f.mu.Lock()
	exists, err := afero.Exists(f.fs, f.path)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	if !exists {
		err = f.writeLocked()
		f.mu.Unlock()
		return err
	}
	if err := f.readLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	f.reconcile(ctx)
	return nil
}

// readLocked replaces the in-memory state from the backing file. A file
// whose top-level value is an array is a schema-v1 file: just stations, no
// saved searches.
func (f *Favorites) readLocked() error {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return err
	}

	var stations []radio.Station
	var searches []string

	if isV1(data) {
		if err := json.Unmarshal(data, &stations); err != nil {
			return err
		}
	} else {
		var stored favoritesFile
		if err := json.Unmarshal(data, &stored); err != nil {
			return err
		}
		stations = stored.Stations
		searches = stored.Searches
	}

	f.order = f.order[:0]
	f.items = map[string]*radio.Station{}
	for _, st := range stations {
		if st.UUID == "" {
			continue
		}
		if _, ok := f.items[st.UUID]; ok {
			continue
		}
		st := st
		st.Starred = true
		f.items[st.UUID] = &st
		f.order = append(f.order, st.UUID)
	}

	f.searchOrder = f.searchOrder[:0]
	f.searches = map[string]struct{}{}
	for _, s := range searches {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		if _, ok := f.searches[s]; ok {
			continue
		}
		f.searches[s] = struct{}{}
		f.searchOrder = append(f.searchOrder, s)
	}
	return nil
}

func isV1(data []byte) bool {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return strings.HasPrefix(trimmed, "[")
}

// reconcile fetches the current upstream copy of every starred station in
// one batched call and flags each local copy as up to date or stale. The
// stored copy is never modified beyond the UpToDate flag.
func (f *Favorites) reconcile(ctx context.Context) {
	if f.dir == nil {
		return
	}

	f.mu.Lock()
	uuids := append([]string(nil), f.order...)
	f.mu.Unlock()
	if len(uuids) == 0 {
		return
	}

	upstream, err := f.dir.StationsByUUIDs(ctx, uuids)
	if err != nil {
		f.log.WithError(err).Warn("favorites reconciliation failed")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, up := range upstream {
		local, ok := f.items[up.UUID]
		if !ok {
			continue
		}
		local.UpToDate = !fieldsDiffer(local, &up)
	}
}

// fieldsDiffer is the reconciliation comparison set: the user-visible
// fields whose change should surface as "station changed upstream".
func fieldsDiffer(a, b *radio.Station) bool {
	return a.Name != b.Name ||
		a.URLResolved != b.URLResolved ||
		a.Favicon != b.Favicon ||
		a.Tags != b.Tags ||
		a.Bitrate != b.Bitrate ||
		a.Codec != b.Codec
}

// AddStation stars a station. Adding an already-present UUID keeps the
// stored field values and does not persist again.
func (f *Favorites) AddStation(station radio.Station) {
	if station.UUID == "" {
		return
	}

	f.mu.Lock()
	if _, ok := f.items[station.UUID]; ok {
		f.mu.Unlock()
		return
	}
	station.Starred = true
	f.items[station.UUID] = &station
	f.order = append(f.order, station.UUID)
	f.persistLocked()
	f.mu.Unlock()

	f.notify()
}

// RemoveStation unstars a station. Removing an absent UUID is a no-op:
// nothing is persisted and no notification fires.
func (f *Favorites) RemoveStation(station radio.Station) {
	f.mu.Lock()
	if _, ok := f.items[station.UUID]; !ok {
		f.mu.Unlock()
		return
	}
	delete(f.items, station.UUID)
	for i, uuid := range f.order {
		if uuid == station.UUID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.persistLocked()
	f.mu.Unlock()

	f.notify()
}

// Toggle stars or unstars a station and reports the new starred state.
func (f *Favorites) Toggle(station radio.Station) bool {
	if f.Contains(station) {
		f.RemoveStation(station)
		return false
	}
	f.AddStation(station)
	return true
}

// Contains reports membership by UUID.
func (f *Favorites) Contains(station radio.Station) bool {
	return f.ContainsUUID(station.UUID)
}

// ContainsUUID reports membership for a bare UUID.
func (f *Favorites) ContainsUUID(uuid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[uuid]
	return ok
}

// Station returns the stored copy of a starred station, nil when absent.
func (f *Favorites) Station(uuid string) *radio.Station {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.items[uuid]
	if !ok {
		return nil
	}
	copied := *st
	return &copied
}

// Stations returns the starred stations in insertion order.
func (f *Favorites) Stations() []radio.Station {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stationsLocked()
}

func (f *Favorites) stationsLocked() []radio.Station {
	out := make([]radio.Station, 0, len(f.order))
	for _, uuid := range f.order {
		if st, ok := f.items[uuid]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// AddSavedSearch remembers a search string.
func (f *Favorites) AddSavedSearch(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	f.mu.Lock()
	if _, ok := f.searches[text]; ok {
		f.mu.Unlock()
		return
	}
	f.searches[text] = struct{}{}
	f.searchOrder = append(f.searchOrder, text)
	f.persistLocked()
	f.mu.Unlock()

	f.notify()
}

// RemoveSavedSearch forgets a search string; absent entries are no-ops.
func (f *Favorites) RemoveSavedSearch(text string) {
	text = strings.TrimSpace(text)

	f.mu.Lock()
	if _, ok := f.searches[text]; !ok {
		f.mu.Unlock()
		return
	}
	delete(f.searches, text)
	for i, s := range f.searchOrder {
		if s == text {
			f.searchOrder = append(f.searchOrder[:i], f.searchOrder[i+1:]...)
			break
		}
	}
	f.persistLocked()
	f.mu.Unlock()

	f.notify()
}

// SavedSearches returns the saved search strings in insertion order.
func (f *Favorites) SavedSearches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searchOrder...)
}

// Subscribe registers a callback invoked after every successful mutation.
// Callbacks run outside the store lock.
func (f *Favorites) Subscribe(fn func()) {
	f.mu.Lock()
	f.subscribers = append(f.subscribers, fn)
	f.mu.Unlock()
}

func (f *Favorites) notify() {
	f.mu.Lock()
	subs := append([]func(){}, f.subscribers...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (f *Favorites) persistLocked() {
	if err := f.writeLocked(); err != nil {
		f.log.WithError(err).WithField("path", f.path).Warn("favorites persist failed")
	}
}

// writeLocked serializes the whole store as a schema-v2 file, writing to a
// temp file and renaming over the target so a crash mid-write cannot lose
// the previous contents.
func (f *Favorites) writeLocked() error {
	out := favoritesFile{
		App:      appID,
		File:     filepath.Base(f.path),
		Schema:   schemaVersion,
		Stations: f.stationsLocked(),
		Searches: append([]string{}, f.searchOrder...),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return err
	}
	f.pendingWrites++
	if err := f.fs.Rename(tmp, f.path); err != nil {
		f.pendingWrites--
		_ = f.fs.Remove(tmp)
		return err
	}
	return nil
}
