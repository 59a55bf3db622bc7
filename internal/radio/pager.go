package radio

import "context"

// DefaultPageSize is the window used when a caller passes no page size.
const DefaultPageSize = 20

// SourceError wraps a directory failure raised while fetching a page, so
// browsing views can tell a hard failure from a successful empty page.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return "station source: " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// StationSet lazily fetches successive result windows for one query. The
// cursor advances only on success, so a failed NextPage can simply be
// retried for the same window. One logical consumer per instance; not
// safe for concurrent calls.
//
// A UUID-backed query has exactly one page: the underlying lookup is not
// offset-based.
type StationSet struct {
	client   *Client
	params   SearchParams
	pageSize int
	offset   int
	uuidDone bool
}

// NewStationSet creates a cursor over the given query.
func NewStationSet(client *Client, params SearchParams, pageSize int) *StationSet {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &StationSet{client: client, params: params, pageSize: pageSize}
}

// NextPage fetches the next window. An empty result signals exhaustion.
func (s *StationSet) NextPage(ctx context.Context) ([]Station, error) {
	if len(s.params.UUIDs) > 0 {
		if s.uuidDone {
			return []Station{}, nil
		}
		stations, err := s.client.StationsByUUIDs(ctx, s.params.UUIDs)
		if err != nil {
			return nil, &SourceError{Err: err}
		}
		s.uuidDone = true
		return stations, nil
	}

	stations, err := s.client.Search(ctx, s.params, s.pageSize, s.offset)
	if err != nil {
		return nil, &SourceError{Err: err}
	}
	s.offset += s.pageSize
	return stations, nil
}
