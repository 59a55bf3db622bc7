package radio

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Station is one directory entry, identified by its UUID. Every other
// field may change between fetches of the same station. Starred and
// UpToDate are owned by the favorites store and never cross the wire.
type Station struct {
	UUID            string `json:"stationuuid"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	URLResolved     string `json:"url_resolved"`
	Homepage        string `json:"homepage"`
	Favicon         string `json:"favicon"`
	Tags            string `json:"tags"`
	Country         string `json:"country"`
	CountryCode     string `json:"countrycode"`
	State           string `json:"state"`
	Language        string `json:"language"`
	Votes           Number `json:"votes"`
	Codec           string `json:"codec"`
	Bitrate         Number `json:"bitrate"`
	ClickCount      Number `json:"clickcount"`
	ClickTrend      Number `json:"clicktrend"`
	LastCheckOK     Number `json:"lastcheckok"`
	LastCheckTime   string `json:"lastchecktime"`
	LastCheckOKTime string `json:"lastcheckoktime"`
	ClickTimestamp  string `json:"clicktimestamp"`

	Starred  bool `json:"-"`
	UpToDate bool `json:"-"`
}

// StreamURL prefers the resolved stream URL over the nominal one.
func (s Station) StreamURL() string {
	if strings.TrimSpace(s.URLResolved) != "" {
		return s.URLResolved
	}
	return s.URL
}

// TagList splits the comma-joined tags field into clean entries.
func (s Station) TagList() []string {
	if strings.TrimSpace(s.Tags) == "" {
		return nil
	}
	parts := strings.Split(s.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Tag is one entry of the directory's tag vocabulary.
type Tag struct {
	Name         string `json:"name"`
	StationCount Number `json:"stationcount"`
}

// Country is one entry of the directory's country list.
type Country struct {
	Name         string `json:"name"`
	Code         string `json:"iso_3166_1"`
	StationCount Number `json:"stationcount"`
}

// Number tolerates the directory's habit of sending counters either as
// JSON numbers or as quoted strings, depending on the mirror. Unparseable
// values decode to zero rather than failing the whole station.
type Number int

func (n *Number) Int() int {
	return int(*n)
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(n))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*n = Number(int(v))
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	*n = Number(int(f))
	return nil
}
