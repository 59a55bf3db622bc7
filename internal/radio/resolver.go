package radio

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"

	"airwave/internal/httpx"
)

const (
	srvService = "api"
	srvProto   = "tcp"
	srvDomain  = "radio-browser.info"

	allServersURL = "https://all.api.radio-browser.info/json/servers"
)

var (
	// ErrNoConnection means mirror discovery or transport exhausted every
	// option; without it no directory client can be constructed.
	ErrNoConnection = errors.New("radio: no directory server reachable")

	// ErrParseData means a mirror answered with something that is not the
	// expected JSON shape.
	ErrParseData = errors.New("radio: unexpected response data")
)

type serverInfo struct {
	Name string `json:"name"`
}

// Resolver discovers a working directory mirror. An operator override
// bypasses discovery entirely; otherwise DNS SRV is tried first and the
// round-robin /json/servers endpoint second. The final pick is uniformly
// random since mirrors rotate and carry no health-check metadata.
type Resolver struct {
	override   []string
	httpc      *httpx.Client
	allServers string
	lookupSRV  func(ctx context.Context) ([]string, error)
	rand       *rand.Rand
}

// NewResolver creates a Resolver. override is a colon-separated host list
// ("a.example.com:b.example.com"); empty means discover.
func NewResolver(httpc *httpx.Client, override string) *Resolver {
	r := &Resolver{
		httpc:      httpc,
		allServers: allServersURL,
		lookupSRV:  lookupSRVHosts,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, host := range strings.Split(override, ":") {
		if host = strings.TrimSpace(host); host != "" {
			r.override = append(r.override, host)
		}
	}
	return r
}

// Resolve returns one "https://<host>" base URL or ErrNoConnection.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	hosts := r.override
	if len(hosts) == 0 {
		hosts, _ = r.lookupSRV(ctx)
	}
	if len(hosts) == 0 {
		hosts = r.fallbackServers(ctx)
	}
	if len(hosts) == 0 {
		return "", ErrNoConnection
	}
	return "https://" + hosts[r.rand.Intn(len(hosts))], nil
}

func lookupSRVHosts(ctx context.Context) ([]string, error) {
	_, records, err := net.DefaultResolver.LookupSRV(ctx, srvService, srvProto, srvDomain)
	if err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(records))
	for _, rec := range records {
		if host := strings.TrimSuffix(rec.Target, "."); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts, nil
}

func (r *Resolver) fallbackServers(ctx context.Context) []string {
	body, _ := r.httpc.GetRetry(ctx, r.allServers)
	if body == nil {
		return nil
	}

	var servers []serverInfo
	if err := json.Unmarshal(body, &servers); err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	hosts := make([]string, 0, len(servers))
	for _, s := range servers {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		hosts = append(hosts, name)
	}
	return hosts
}
