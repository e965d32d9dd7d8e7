package models

// ExtractionResult is the structured record served for one target URL.
// It is built once per request by the extractor and immutable afterwards;
// the same value is cached and returned to the caller.
type ExtractionResult struct {
	// Title is never empty; it falls back to the page's domain.
	Title string `json:"title"`

	// Image is either empty or an absolute URL.
	Image string `json:"image"`

	// Price is either empty or a normalized numeric string prefixed with
	// a currency symbol (e.g. "£16.99"). The currency is folded into the
	// price for the wire format.
	Price string `json:"price"`

	// Currency is the ISO currency code signal that produced the price
	// symbol. Internal only; the HTTP contract carries the symbol inside
	// Price.
	Currency string `json:"-"`

	// Domain is the final URL's hostname without any leading "www".
	Domain string `json:"domain"`

	// URL is the canonical (post-redirect) URL.
	URL string `json:"url"`

	// Timestamp is the extraction time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// PartialMetadata is the output of a single parser strategy before
// normalization. Every field is optional; empty means "no contribution".
// It only lives within one request.
type PartialMetadata struct {
	Title    string
	Image    string
	Price    string
	Currency string
}

// Backfill copies each non-empty field of other into p where p's field is
// still empty. p keeps priority: a field set by an earlier (higher-priority)
// strategy is never overwritten.
func (p *PartialMetadata) Backfill(other PartialMetadata) {
	if p.Title == "" {
		p.Title = other.Title
	}
	if p.Image == "" {
		p.Image = other.Image
	}
	if p.Price == "" {
		p.Price = other.Price
	}
	if p.Currency == "" {
		p.Currency = other.Currency
	}
}

// Empty reports whether the strategy contributed nothing at all.
func (p PartialMetadata) Empty() bool {
	return p.Title == "" && p.Image == "" && p.Price == "" && p.Currency == ""
}
