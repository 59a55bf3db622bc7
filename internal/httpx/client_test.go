package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClient_RequiresUserAgent(t *testing.T) {
	if _, err := NewClient("", nil); err == nil {
		t.Error("NewClient(\"\") should return error")
	}
	if _, err := NewClient("TestApp/1.0", nil); err != nil {
		t.Errorf("NewClient() error = %v", err)
	}
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "TestApp/1.0" {
			t.Errorf("User-Agent = %q, want %q", ua, "TestApp/1.0")
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client, _ := NewClient("TestApp/1.0", nil)
	body, status := client.Get(context.Background(), server.URL)
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want %q", body, "hello")
	}
}

func TestClient_Get_ReturnsBodyOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))
	defer server.Close()

	client, _ := NewClient("TestApp/1.0", nil)
	body, status := client.Get(context.Background(), server.URL)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if string(body) != "missing" {
		t.Errorf("body = %q, want %q", body, "missing")
	}
}

func TestClient_Get_TransportFailure(t *testing.T) {
	client, _ := NewClient("TestApp/1.0", nil)
	body, status := client.Get(context.Background(), "http://127.0.0.1:1")
	if body != nil {
		t.Error("body should be nil on transport failure")
	}
	if status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
}

func TestClient_GetRetry_ExhaustsThreeAttempts(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewClient("TestApp/1.0", nil)
	start := time.Now()
	body, status := client.GetRetry(context.Background(), server.URL)
	elapsed := time.Since(start)

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if body != nil {
		t.Error("body should be nil after exhausting retries")
	}
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want last-seen 500", status)
	}
	// Two sleeps of 200ms and 400ms separate the three attempts.
	if elapsed < 500*time.Millisecond {
		t.Errorf("elapsed = %v, want at least ~600ms of backoff", elapsed)
	}
}

func TestClient_GetRetry_SucceedsAfterFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, _ := NewClient("TestApp/1.0", nil)
	body, status := client.GetRetry(context.Background(), server.URL)
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestClient_GetRetry_OfflineShortCircuits(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
	}))
	defer server.Close()

	offline := &Switch{}
	offline.SetOffline(true)

	client, _ := NewClient("TestApp/1.0", offline)
	body, status := client.GetRetry(context.Background(), server.URL)
	if body != nil || status != 0 {
		t.Errorf("GetRetry() = (%v, %d), want (nil, 0)", body, status)
	}
	if got := attempts.Load(); got != 0 {
		t.Errorf("attempts = %d, want 0 (no request while offline)", got)
	}

	offline.SetOffline(false)
	if _, status := client.GetRetry(context.Background(), server.URL); status != http.StatusOK {
		t.Errorf("status after clearing offline = %d, want 200", status)
	}
}

func TestClient_Head(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, _ := NewClient("TestApp/1.0", nil)
	if status := client.Head(context.Background(), server.URL); status != http.StatusNoContent {
		t.Errorf("Head() = %d, want 204", status)
	}
	if status := client.Head(context.Background(), "http://127.0.0.1:1"); status != 0 {
		t.Errorf("Head() on dead host = %d, want 0", status)
	}
}

func TestSwitch_NilIsOnline(t *testing.T) {
	var s *Switch
	if s.Offline() {
		t.Error("nil switch should report online")
	}
}
