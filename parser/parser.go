// Package parser turns raw product-page HTML into partial metadata.
//
// Extraction runs as an ordered chain of independent strategies. Fields
// are backfilled across the whole chain: the first non-empty value wins
// per field, not per strategy, so a later strategy may supply the image
// or price an earlier one missed even when the earlier one already found
// the title. Strategies never fail — malformed markup or JSON is simply
// no contribution.
package parser

import (
	"net/url"

	"github.com/arkaf/wantmeta/models"
)

// Strategy is one extraction approach over an immutable HTML document.
type Strategy struct {
	Name  string
	Parse func(html string, finalURL *url.URL) models.PartialMetadata
}

// DefaultChain returns the built-in strategies in priority order:
// structured data, meta tags, site-specific rules, generic fallback.
func DefaultChain() []Strategy {
	return []Strategy{
		{Name: "jsonld", Parse: parseJSONLD},
		{Name: "meta", Parse: parseMeta},
		{Name: "site", Parse: parseSiteSpecific},
		{Name: "fallback", Parse: parseFallback},
	}
}

// Run executes every strategy in the chain and merges their outputs with
// per-field backfill in chain order. The merge is deterministic for a
// given chain regardless of how the strategies themselves are evaluated.
func Run(chain []Strategy, html string, finalURL *url.URL) models.PartialMetadata {
	var merged models.PartialMetadata
	for _, s := range chain {
		merged.Backfill(s.Parse(html, finalURL))
	}
	return merged
}
