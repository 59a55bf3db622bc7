package httpx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	requestTimeout = 12 * time.Second
	retryAttempts  = 3
	retryDelayStep = 200 * time.Millisecond

	// Limit response size to 10MB to prevent OOM on malformed responses
	maxBodyBytes = 10 * 1024 * 1024
)

var errOffline = errors.New("offline")

// Switch is the application-wide offline flag. When set, every request
// short-circuits before touching the network.
type Switch struct {
	off atomic.Bool
}

func (s *Switch) SetOffline(v bool) {
	s.off.Store(v)
}

func (s *Switch) Offline() bool {
	if s == nil {
		return false
	}
	return s.off.Load()
}

// Client performs GET/HEAD requests against directory mirrors. It never
// returns errors: transport and status failures collapse to a nil body and
// the last-seen status code (0 when no response arrived at all). Mirrors
// commonly serve self-signed or mismatched certificates, so certificate
// validation is disabled.
type Client struct {
	userAgent string
	offline   *Switch
	once      sync.Once
	http      *http.Client
}

// NewClient creates a pooled HTTP client identified by userAgent. The
// offline switch may be nil, in which case requests are never suppressed.
func NewClient(userAgent string, offline *Switch) (*Client, error) {
	if userAgent == "" {
		return nil, errors.New("user agent is required")
	}
	return &Client{userAgent: userAgent, offline: offline}, nil
}

func (c *Client) client() *http.Client {
	c.once.Do(func() {
		c.http = &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 4,
				MaxConnsPerHost:     8,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
			},
		}
	})
	return c.http
}

// Get issues a single GET attempt. The body is nil on any transport
// failure; callers inspect status 0 as "no response". Non-2xx responses
// still return their body.
func (c *Client) Get(ctx context.Context, uri string) ([]byte, int) {
	if c.offline.Offline() {
		return nil, 0
	}
	return c.fetch(ctx, uri)
}

// GetRetry issues a GET with up to 3 attempts while the status falls
// outside [200,300), sleeping 200ms×attempt between tries. The offline
// switch is consulted before every attempt and before every sleep. After
// exhaustion the body is nil and the status is the last one seen.
func (c *Client) GetRetry(ctx context.Context, uri string) ([]byte, int) {
	var body []byte
	var status int

	err := retry.Do(
		func() error {
			if c.offline.Offline() {
				return retry.Unrecoverable(errOffline)
			}
			b, s := c.fetch(ctx, uri)
			status = s
			if s < 200 || s >= 300 {
				return fmt.Errorf("request failed with status %d", s)
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * retryDelayStep
		}),
		retry.RetryIf(func(_ error) bool {
			return !c.offline.Offline()
		}),
	)
	if err != nil {
		if errors.Is(err, errOffline) {
			return nil, 0
		}
		return nil, status
	}
	return body, status
}

// Head issues a single HEAD attempt and returns the status code, 0 on any
// failure. Used for mirror liveness probing.
func (c *Client) Head(ctx context.Context, uri string) int {
	if c.offline.Offline() {
		return 0
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client().Do(req)
	if err != nil {
		return 0
	}
	resp.Body.Close()
	return resp.StatusCode
}

func (c *Client) fetch(ctx context.Context, uri string) ([]byte, int) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, 0
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, 0
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0
	}
	return data, resp.StatusCode
}
