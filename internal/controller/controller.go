// Package controller is the facade the UI layer consumes: station-set
// factories for every browsing view plus the favorites store, wired
// together over one resolved directory mirror. All dependencies are
// injected; nothing here reaches for global state.
package controller

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"airwave/internal/httpx"
	"airwave/internal/radio"
	"airwave/internal/store"
)

// Controller combines the directory client and the favorites store.
type Controller struct {
	client    *radio.Client
	favorites *store.Favorites
	pageSize  int
}

// New wires a controller from already-built parts. Used directly by tests;
// applications usually call Connect.
func New(client *radio.Client, favorites *store.Favorites, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = radio.DefaultPageSize
	}
	return &Controller{client: client, favorites: favorites, pageSize: pageSize}
}

// Connect resolves a directory mirror, builds the client and the favorites
// store on top of it, and loads the store (including reconciliation).
// Fails with radio.ErrNoConnection when no mirror is reachable; the caller
// decides whether that is fatal or triggers an offline view.
func Connect(ctx context.Context, httpc *httpx.Client, resolver *radio.Resolver, fs afero.Fs, favoritesPath string, pageSize int, log *logrus.Logger) (*Controller, error) {
	client, err := radio.NewClient(ctx, httpc, resolver, log)
	if err != nil {
		return nil, err
	}

	favorites := store.NewFavorites(fs, favoritesPath, client, log)
	if err := favorites.Load(ctx); err != nil {
		return nil, err
	}

	return New(client, favorites, pageSize), nil
}

// Favorites exposes the favorites store.
func (c *Controller) Favorites() *store.Favorites {
	return c.favorites
}

// Trending pages stations by recent click trend.
func (c *Controller) Trending() *radio.StationSet {
	return c.set(radio.SearchParams{Order: radio.ByClickTrend, Reverse: true})
}

// Popular pages stations by all-time click count.
func (c *Controller) Popular() *radio.StationSet {
	return c.set(radio.SearchParams{Order: radio.ByClickCount, Reverse: true})
}

// Random pages stations in random order.
func (c *Controller) Random() *radio.StationSet {
	return c.set(radio.SearchParams{Order: radio.ByRandom})
}

// ByTag pages stations carrying all the given tags, most-voted first.
func (c *Controller) ByTag(tags ...string) *radio.StationSet {
	return c.set(radio.SearchParams{Tags: tags, Order: radio.ByVotes, Reverse: true})
}

// ByText pages stations matching a free-text name search.
func (c *Controller) ByText(text string) *radio.StationSet {
	return c.set(radio.SearchParams{Text: text, Order: radio.ByName})
}

// ByCountry pages stations for one ISO country code, most-clicked first.
func (c *Controller) ByCountry(code string) *radio.StationSet {
	return c.set(radio.SearchParams{CountryCode: code, Order: radio.ByClickCount, Reverse: true})
}

// ByUUIDs resolves an explicit station list; the set has a single page.
func (c *Controller) ByUUIDs(uuids ...string) *radio.StationSet {
	return c.set(radio.SearchParams{UUIDs: uuids})
}

// SavedSearch pages the stations behind one saved search string.
func (c *Controller) SavedSearch(text string) *radio.StationSet {
	return c.ByText(text)
}

func (c *Controller) set(params radio.SearchParams) *radio.StationSet {
	return radio.NewStationSet(c.client, params, c.pageSize)
}

// Tags returns a window of the directory's tag vocabulary.
func (c *Controller) Tags(ctx context.Context, offset, limit int) ([]radio.Tag, error) {
	return c.client.Tags(ctx, offset, limit)
}

// Countries returns the directory's country list.
func (c *Controller) Countries(ctx context.Context) ([]radio.Country, error) {
	return c.client.Countries(ctx)
}

// Station looks up one station by UUID, preferring the starred local copy
// so favorites stay visible when the directory drops them.
func (c *Controller) Station(ctx context.Context, uuid string) (*radio.Station, error) {
	if st := c.favorites.Station(uuid); st != nil {
		return st, nil
	}
	return c.client.StationByUUID(ctx, uuid)
}

// Toggle stars or unstars a station and reports the new state.
func (c *Controller) Toggle(station radio.Station) bool {
	return c.favorites.Toggle(station)
}

// Click reports a listen event. Best-effort.
func (c *Controller) Click(ctx context.Context, uuid string) {
	c.client.Click(ctx, uuid)
}

// Vote casts a vote. Best-effort.
func (c *Controller) Vote(ctx context.Context, uuid string) {
	c.client.Vote(ctx, uuid)
}
