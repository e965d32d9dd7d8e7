// Package extractor wires cache, fetcher, parser chain, and normalizer
// into the end-to-end extraction pipeline.
package extractor

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/arkaf/wantmeta/cache"
	"github.com/arkaf/wantmeta/fetcher"
	"github.com/arkaf/wantmeta/models"
	"github.com/arkaf/wantmeta/normalizer"
	"github.com/arkaf/wantmeta/parser"
)

// Extractor runs the extraction pipeline. Each request is an independent
// stateless unit of work; the cache is the only shared state. Concurrent
// requests for the same URL may both miss and fetch redundantly, which is
// harmless duplicate work rather than something worth coordinating.
type Extractor struct {
	fetcher *fetcher.Fetcher
	cache   *cache.Cache
	chain   []parser.Strategy
}

// New creates an Extractor with the default parser chain.
func New(f *fetcher.Fetcher, c *cache.Cache) *Extractor {
	return &Extractor{fetcher: f, cache: c, chain: parser.DefaultChain()}
}

// Extract resolves a target URL into an ExtractionResult.
//
// Pipeline: validate → cache lookup (hit returns immediately) → fetch
// with profile rotation → parser chain with backfill merge → normalize →
// cache write. Parsing and normalizing never fail; extraction only errors
// on invalid input or a hard fetch failure. The returned bool reports
// whether the result came from cache.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*models.ExtractionResult, bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, false, models.NewExtractError(models.ErrCodeInvalidInput, "invalid target url", err)
	}
	key := parsed.String()

	if cached, hit := e.cache.Get(key); hit {
		return cached, true, nil
	}

	fetched, err := e.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, false, models.NewExtractError(models.ErrCodeFetchFailed, "failed to fetch content", err)
	}

	merged := parser.Run(e.chain, fetched.HTML, fetched.FinalURL)
	result := normalizer.Normalize(merged, fetched.FinalURL)

	e.cache.Set(key, result)

	slog.Info("extracted",
		"url", key,
		"final_url", result.URL,
		"title", result.Title,
		"has_image", result.Image != "",
		"has_price", result.Price != "",
		"attempts", fetched.Attempts,
		"profile", fetched.Profile,
		"blocked", fetched.Blocked,
	)

	return result, false, nil
}
