package radio

import (
	"net/url"
	"strconv"
	"strings"
)

// SortOrder enumerates the upstream sort keys. The string values are the
// API's literal vocabulary; anything else is silently ignored upstream.
type SortOrder int

const (
	ByName SortOrder = iota
	ByURL
	ByHomepage
	ByFavicon
	ByTags
	ByCountry
	ByState
	ByLanguage
	ByVotes
	ByCodec
	ByBitrate
	ByLastCheckOK
	ByLastCheckTime
	ByClickTimestamp
	ByClickCount
	ByClickTrend
	ByRandom
)

var sortKeys = map[SortOrder]string{
	ByName:           "name",
	ByURL:            "url",
	ByHomepage:       "homepage",
	ByFavicon:        "favicon",
	ByTags:           "tags",
	ByCountry:        "country",
	ByState:          "state",
	ByLanguage:       "language",
	ByVotes:          "votes",
	ByCodec:          "codec",
	ByBitrate:        "bitrate",
	ByLastCheckOK:    "lastcheckok",
	ByLastCheckTime:  "lastchecktime",
	ByClickTimestamp: "clicktimestamp",
	ByClickCount:     "clickcount",
	ByClickTrend:     "clicktrend",
	ByRandom:         "random",
}

// Key returns the upstream sort-key string, defaulting to "name".
func (o SortOrder) Key() string {
	if key, ok := sortKeys[o]; ok {
		return key
	}
	return "name"
}

// SearchParams captures one query's filter criteria. A non-empty UUIDs
// list turns the query into a direct lookup and all other criteria are
// ignored. Immutable once handed to the client.
type SearchParams struct {
	Text        string
	Tags        []string
	UUIDs       []string
	CountryCode string
	Order       SortOrder
	Reverse     bool
}

func (p SearchParams) query(rowcount, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(rowcount))
	q.Set("order", p.Order.Key())
	q.Set("offset", strconv.Itoa(offset))
	if text := strings.TrimSpace(p.Text); text != "" {
		q.Set("name", text)
	}
	if len(p.Tags) > 0 {
		q.Set("tagList", strings.Join(p.Tags, ","))
		q.Set("tagExact", "true")
	}
	if cc := strings.TrimSpace(p.CountryCode); cc != "" {
		q.Set("countrycode", strings.ToUpper(cc))
	}
	// Reverse-of-random is meaningless, the parameter is omitted.
	if p.Order != ByRandom {
		q.Set("reverse", strconv.FormatBool(p.Reverse))
	}
	return q
}
