// Package fetcher retrieves raw HTML from uncooperative e-commerce sites.
//
// Each fetch runs up to a configured number of attempts, rotating through
// a pool of request profiles so a blocked browser fingerprint is not
// presented twice. Attempts are strictly sequential: profile N+1 is only
// tried after profile N's response has been classified. When every attempt
// classifies as blocked, the last body is returned anyway — downstream
// parsing degrades to a thin result instead of the request failing.
package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/arkaf/wantmeta/config"
)

// Result is the outcome of a fetch.
type Result struct {
	// HTML is the (decoded) response body.
	HTML string

	// FinalURL is the URL after following all redirects. It is the base
	// for relative-URL resolution and the source of the display domain.
	FinalURL *url.URL

	// StatusCode is the HTTP status of the returned attempt.
	StatusCode int

	// Blocked is true when even the returned body classified as an
	// anti-bot challenge (attempts exhausted, best-effort content).
	Blocked bool

	// Profile is the name of the request profile that produced the body.
	Profile string

	// Attempts is how many attempts were made.
	Attempts int
}

// Fetcher fetches pages with rotating request profiles and a Chrome TLS
// fingerprint. Safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	profiles []RequestProfile
	attempts int
	timeout  time.Duration
	maxBody  int64
	memory   *ProfileMemory
}

// New creates a Fetcher from config using the default profile pool.
func New(cfg config.FetcherConfig) *Fetcher {
	return NewWithProfiles(cfg, DefaultProfiles())
}

// NewWithProfiles creates a Fetcher with an explicit profile pool.
func NewWithProfiles(cfg config.FetcherConfig, profiles []RequestProfile) *Fetcher {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	return &Fetcher{
		client: &http.Client{
			Transport: newTransport(),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		profiles: profiles,
		attempts: attempts,
		timeout:  cfg.Timeout,
		maxBody:  maxBody,
		memory:   NewProfileMemory(cfg.ProfileMemoryTTL),
	}
}

// Close stops the fetcher's background goroutines.
func (f *Fetcher) Close() {
	f.memory.Stop()
	f.client.CloseIdleConnections()
}

// Fetch retrieves target, rotating profiles across attempts. It returns a
// Result as soon as an attempt classifies as non-blocked. If all attempts
// classify blocked, the last attempt's body is returned best-effort with
// Blocked set. An error is returned only when no attempt produced a body
// at all (hard transport failure or invalid URL).
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Result, error) {
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("fetcher: invalid url %q", target)
	}

	// Start the rotation at the profile that last got through this domain.
	start := f.memory.Get(parsed.Hostname())
	if start < 0 {
		start = 0
	}

	var last *Result
	var lastErr error
	var prevBlockedFP uint64

	for attempt := 0; attempt < f.attempts; attempt++ {
		idx := (start + attempt) % len(f.profiles)
		profile := &f.profiles[idx]

		res, err := f.attempt(ctx, target, profile)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			lastErr = err
			slog.Debug("fetch attempt failed",
				"url", target,
				"attempt", attempt+1,
				"profile", profile.Name,
				"error", err,
			)
			continue
		}
		res.Attempts = attempt + 1

		blocked, fp := classifyBlocked(res.HTML, prevBlockedFP)
		if !blocked {
			f.memory.Set(res.FinalURL.Hostname(), idx)
			return res, nil
		}

		prevBlockedFP = fp
		res.Blocked = true
		last = res
		slog.Debug("fetch attempt classified as blocked",
			"url", target,
			"attempt", attempt+1,
			"profile", profile.Name,
			"status", res.StatusCode,
			"bytes", len(res.HTML),
		)
	}

	if last != nil {
		// Best-effort: every attempt looked blocked, hand back the last
		// body and let the parser chain produce what it can.
		f.memory.Delete(last.FinalURL.Hostname())
		last.Attempts = f.attempts
		return last, nil
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, fmt.Errorf("fetcher: all %d attempts failed for %s: %w", f.attempts, target, lastErr)
}

// attempt performs one fetch with one profile.
func (f *Fetcher) attempt(ctx context.Context, target string, profile *RequestProfile) (*Result, error) {
	attemptCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	profile.Apply(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Block pages regularly arrive with 403/503, so the body is read and
	// classified regardless of status; only transport failures are errors.
	body, err := f.decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Result{
		HTML:       string(body),
		FinalURL:   resp.Request.URL,
		StatusCode: resp.StatusCode,
		Profile:    profile.Name,
	}, nil
}

// decodeBody reads the response body, undoing the content encoding the
// profiles advertise. Setting Accept-Encoding by hand disables net/http's
// transparent gzip handling, so all three encodings are decoded here.
func (f *Fetcher) decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(io.LimitReader(reader, f.maxBody))
}
