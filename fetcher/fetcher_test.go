package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arkaf/wantmeta/config"
)

func testConfig() config.FetcherConfig {
	return config.FetcherConfig{
		Attempts:         3,
		Timeout:          5 * time.Second,
		MaxBodyBytes:     10 << 20,
		ProfileMemoryTTL: time.Hour,
	}
}

func newTestFetcher(t *testing.T, cfg config.FetcherConfig) *Fetcher {
	t.Helper()
	f := NewWithProfiles(cfg, DefaultProfiles())
	t.Cleanup(f.Close)
	return f
}

func TestFetch_ReturnsBodyAndFinalURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(plausiblePage("<h1>Widget</h1>")))
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	res, err := f.Fetch(context.Background(), srv.URL+"/item/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.HTML, "Widget") {
		t.Error("body not returned")
	}
	if res.FinalURL.Path != "/item/1" {
		t.Errorf("final URL path = %q, want /item/1", res.FinalURL.Path)
	}
	if res.Blocked {
		t.Error("plain page should not be blocked")
	}
	if res.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", res.Attempts)
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(plausiblePage("<h1>Moved here</h1>")))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	res, err := f.Fetch(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FinalURL.Path != "/new" {
		t.Errorf("final URL path = %q, want /new (post-redirect)", res.FinalURL.Path)
	}
}

func TestFetch_RetriesBlockedWithDifferentProfile(t *testing.T) {
	var agents []string
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.UserAgent())
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(blockPage("<h1>Access Denied</h1><p>captcha required</p>")))
			return
		}
		w.Write([]byte(plausiblePage("<h1>Real Product</h1>")))
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.HTML, "Real Product") {
		t.Error("should return attempt 2's parse-able body, not attempt 1's block page")
	}
	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", res.Attempts)
	}
	if len(agents) == 2 && agents[0] == agents[1] {
		t.Error("retry must rotate to a different request profile")
	}
}

func TestFetch_AllBlockedReturnsBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(blockPage("<h1>Access Denied</h1>")))
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("exhausted blocked attempts must not be an error, got: %v", err)
	}
	if !res.Blocked {
		t.Error("result should be flagged blocked")
	}
	if res.HTML == "" {
		t.Error("best-effort body should still be returned")
	}
	if res.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", res.Attempts)
	}
}

func TestFetch_HardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on

	f := newTestFetcher(t, testConfig())
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error when every attempt fails at transport level")
	}
}

func TestFetch_EmptyProfilePoolFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() == "" {
			t.Error("fallback profile should still send a User-Agent")
		}
		w.Write([]byte(plausiblePage("<h1>Widget</h1>")))
	}))
	defer srv.Close()

	f := NewWithProfiles(testConfig(), nil)
	t.Cleanup(f.Close)
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("nil profile pool must fall back to defaults, got: %v", err)
	}
	if !strings.Contains(res.HTML, "Widget") {
		t.Error("body not returned")
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := newTestFetcher(t, testConfig())
	if _, err := f.Fetch(context.Background(), "ftp://example.com/x"); err == nil {
		t.Error("non-http scheme should be rejected")
	}
}

func TestFetch_RemembersWorkingProfile(t *testing.T) {
	var calls atomic.Int32
	var lastAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAgent.Store(r.UserAgent())
		// Block the first profile once so the rotation advances.
		if calls.Add(1) == 1 {
			w.Write([]byte(blockPage("<h1>Access Denied</h1>")))
			return
		}
		w.Write([]byte(plausiblePage("<h1>Product</h1>")))
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())

	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	winner := lastAgent.Load().(string)

	// Second request to the same domain should open with the profile that
	// got through.
	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lastAgent.Load().(string); got != winner {
		t.Errorf("second request started with %q, want remembered profile %q", got, winner)
	}
	_ = res
}
