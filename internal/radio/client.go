package radio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"airwave/internal/httpx"
)

// uuidChunkSize caps how many UUIDs go into one byuuid request.
const uuidChunkSize = 100

// Client issues typed queries against one resolved directory mirror.
// The mirror is picked once at construction and kept for the client's
// lifetime.
type Client struct {
	baseURL string
	httpc   *httpx.Client
	log     *logrus.Logger
}

// NewClient resolves a mirror and returns a client bound to it. Fails with
// ErrNoConnection when discovery comes up empty.
func NewClient(ctx context.Context, httpc *httpx.Client, resolver *Resolver, log *logrus.Logger) (*Client, error) {
	baseURL, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: baseURL, httpc: httpc, log: log}, nil
}

// NewClientWithBase pins the client to an explicit base URL, bypassing
// mirror discovery.
func NewClientWithBase(baseURL string, httpc *httpx.Client, log *logrus.Logger) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc, log: log}
}

// BaseURL reports the mirror this client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search runs one windowed query. A non-empty UUID list short-circuits to
// a direct batched lookup. Transport failure degrades to an empty slice so
// browsing views can distinguish "nothing found" from the hard ErrParseData
// case. Results are deduplicated by UUID, first occurrence wins.
func (c *Client) Search(ctx context.Context, params SearchParams, rowcount, offset int) ([]Station, error) {
	if len(params.UUIDs) > 0 {
		return c.StationsByUUIDs(ctx, params.UUIDs)
	}

	reqURL := c.baseURL + "/json/stations/search?" + params.query(rowcount, offset).Encode()
	body, status := c.httpc.GetRetry(ctx, reqURL)
	if body == nil {
		c.log.WithFields(logrus.Fields{"url": reqURL, "status": status}).Warn("station search failed")
		return []Station{}, nil
	}

	var stations []Station
	if err := json.Unmarshal(body, &stations); err != nil {
		return nil, fmt.Errorf("%w: station search: %v", ErrParseData, err)
	}
	return dedupe(stations), nil
}

// StationByUUID looks up a single station. Both "not found" and transport
// failure return nil without an error.
func (c *Client) StationByUUID(ctx context.Context, uuid string) (*Station, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, nil
	}

	reqURL := c.baseURL + "/json/stations/byuuid/" + url.PathEscape(uuid)
	body, _ := c.httpc.GetRetry(ctx, reqURL)
	if body == nil {
		return nil, nil
	}

	var stations []Station
	if err := json.Unmarshal(body, &stations); err != nil {
		return nil, fmt.Errorf("%w: station lookup: %v", ErrParseData, err)
	}
	if len(stations) == 0 {
		return nil, nil
	}
	return &stations[0], nil
}

// StationsByUUIDs resolves a UUID collection in comma-joined batches of
// 100, fetched concurrently. Unresolvable UUIDs are skipped silently and
// result order is unspecified.
func (c *Client) StationsByUUIDs(ctx context.Context, uuids []string) ([]Station, error) {
	ids := make([]string, 0, len(uuids))
	for _, id := range uuids {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []Station{}, nil
	}

	p := pool.NewWithResults[[]Station]().WithContext(ctx)
	for start := 0; start < len(ids); start += uuidChunkSize {
		end := start + uuidChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		p.Go(func(ctx context.Context) ([]Station, error) {
			return c.stationChunk(ctx, chunk)
		})
	}

	chunks, err := p.Wait()
	if err != nil {
		return nil, err
	}

	var stations []Station
	for _, chunk := range chunks {
		stations = append(stations, chunk...)
	}
	return dedupe(stations), nil
}

func (c *Client) stationChunk(ctx context.Context, uuids []string) ([]Station, error) {
	q := url.Values{}
	q.Set("uuids", strings.Join(uuids, ","))
	reqURL := c.baseURL + "/json/stations/byuuid?" + q.Encode()

	body, status := c.httpc.GetRetry(ctx, reqURL)
	if body == nil {
		c.log.WithFields(logrus.Fields{"status": status, "uuids": len(uuids)}).Warn("station batch lookup failed")
		return nil, nil
	}

	var stations []Station
	if err := json.Unmarshal(body, &stations); err != nil {
		return nil, fmt.Errorf("%w: station batch lookup: %v", ErrParseData, err)
	}
	return stations, nil
}

// Tags returns a window of the directory's tag vocabulary.
func (c *Client) Tags(ctx context.Context, offset, limit int) ([]Tag, error) {
	q := url.Values{}
	q.Set("offset", fmt.Sprintf("%d", offset))
	q.Set("limit", fmt.Sprintf("%d", limit))
	reqURL := c.baseURL + "/json/tags?" + q.Encode()

	body, status := c.httpc.GetRetry(ctx, reqURL)
	if body == nil {
		c.log.WithField("status", status).Warn("tag listing failed")
		return []Tag{}, nil
	}

	var tags []Tag
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("%w: tag listing: %v", ErrParseData, err)
	}
	return tags, nil
}

// Countries returns the directory's country list, sorted by name.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	body, status := c.httpc.GetRetry(ctx, c.baseURL+"/json/countries")
	if body == nil {
		c.log.WithField("status", status).Warn("country listing failed")
		return []Country{}, nil
	}

	var countries []Country
	if err := json.Unmarshal(body, &countries); err != nil {
		return nil, fmt.Errorf("%w: country listing: %v", ErrParseData, err)
	}
	sort.Slice(countries, func(i, j int) bool {
		return strings.ToLower(countries[i].Name) < strings.ToLower(countries[j].Name)
	})
	return countries, nil
}

// Click reports a listen event upstream. Best-effort telemetry, failures
// are only logged.
func (c *Client) Click(ctx context.Context, uuid string) {
	c.fireAndForget(ctx, "/json/url/", uuid, "click")
}

// Vote casts a vote for a station. Best-effort telemetry, failures are
// only logged.
func (c *Client) Vote(ctx context.Context, uuid string) {
	c.fireAndForget(ctx, "/json/vote/", uuid, "vote")
}

func (c *Client) fireAndForget(ctx context.Context, path, uuid, kind string) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return
	}
	_, status := c.httpc.Get(ctx, c.baseURL+path+url.PathEscape(uuid))
	if status < 200 || status >= 300 {
		c.log.WithFields(logrus.Fields{"uuid": uuid, "status": status}).Debugf("%s event not delivered", kind)
	}
}

func dedupe(stations []Station) []Station {
	seen := make(map[string]struct{}, len(stations))
	out := make([]Station, 0, len(stations))
	for _, st := range stations {
		if _, ok := seen[st.UUID]; ok {
			continue
		}
		seen[st.UUID] = struct{}{}
		out = append(out, st)
	}
	return out
}
