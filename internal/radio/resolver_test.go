package radio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"airwave/internal/httpx"
)

func testHTTPClient(t *testing.T) *httpx.Client {
	t.Helper()
	client, err := httpx.NewClient("TestApp/1.0", nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestResolver_OverrideBypassesDiscovery(t *testing.T) {
	var fallbackHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackHits.Add(1)
	}))
	defer server.Close()

	resolver := NewResolver(testHTTPClient(t), "a.example.com:b.example.com")
	resolver.allServers = server.URL
	resolver.lookupSRV = func(ctx context.Context) ([]string, error) {
		t.Error("SRV lookup must not run with an override")
		return nil, nil
	}

	allowed := map[string]bool{
		"https://a.example.com": true,
		"https://b.example.com": true,
	}
	for i := 0; i < 20; i++ {
		baseURL, err := resolver.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !allowed[baseURL] {
			t.Fatalf("Resolve() = %q, not in override set", baseURL)
		}
	}
	if fallbackHits.Load() != 0 {
		t.Error("round-robin fallback must not be queried with an override")
	}
}

func TestResolver_SRVPreferred(t *testing.T) {
	resolver := NewResolver(testHTTPClient(t), "")
	resolver.lookupSRV = func(ctx context.Context) ([]string, error) {
		return []string{"srv1.example.com"}, nil
	}

	baseURL, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if baseURL != "https://srv1.example.com" {
		t.Errorf("Resolve() = %q, want https://srv1.example.com", baseURL)
	}
}

func TestResolver_FallbackServers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]serverInfo{
			{Name: "de1.api.example.org"},
			{Name: "de1.api.example.org"}, // duplicate A record
			{Name: "nl1.api.example.org"},
			{Name: "  "},
		})
	}))
	defer server.Close()

	resolver := NewResolver(testHTTPClient(t), "")
	resolver.allServers = server.URL
	resolver.lookupSRV = func(ctx context.Context) ([]string, error) {
		return nil, errors.New("no such host")
	}

	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		baseURL, err := resolver.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !strings.HasPrefix(baseURL, "https://") {
			t.Fatalf("Resolve() = %q, want https:// prefix", baseURL)
		}
		seen[baseURL] = true
	}
	for host := range seen {
		if host != "https://de1.api.example.org" && host != "https://nl1.api.example.org" {
			t.Errorf("unexpected host %q", host)
		}
	}
}

func TestResolver_NoServers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	resolver := NewResolver(testHTTPClient(t), "")
	resolver.allServers = server.URL
	resolver.lookupSRV = func(ctx context.Context) ([]string, error) {
		return nil, errors.New("no such host")
	}

	_, err := resolver.Resolve(context.Background())
	if !errors.Is(err, ErrNoConnection) {
		t.Errorf("Resolve() error = %v, want ErrNoConnection", err)
	}
}
