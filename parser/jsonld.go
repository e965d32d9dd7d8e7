package parser

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arkaf/wantmeta/models"
)

// parseJSONLD scans every <script type="application/ld+json"> block for a
// schema.org Product or Offer node. Each block is parsed independently; a
// malformed block is skipped, not fatal. The @type match is a deliberately
// loose case-insensitive substring check because real-world markup is
// inconsistent ("Product", "http://schema.org/Product", ["Product","Thing"]).
func parseJSONLD(html string, _ *url.URL) models.PartialMetadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.PartialMetadata{}
	}

	var meta models.PartialMetadata
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true // skip malformed block
		}
		for _, node := range flattenNodes(raw) {
			if m, ok := productMetadata(node); ok {
				meta = m
				return false
			}
		}
		return true
	})
	return meta
}

// flattenNodes expands a decoded JSON-LD document into candidate nodes:
// a single object, a top-level array, and any @graph container.
func flattenNodes(raw any) []map[string]any {
	var nodes []map[string]any
	switch v := raw.(type) {
	case map[string]any:
		nodes = append(nodes, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, g := range graph {
				if m, ok := g.(map[string]any); ok {
					nodes = append(nodes, m)
				}
			}
		}
	case []any:
		for _, item := range v {
			nodes = append(nodes, flattenNodes(item)...)
		}
	}
	return nodes
}

// productMetadata extracts metadata from a node whose @type contains
// "product" or "offer".
func productMetadata(node map[string]any) (models.PartialMetadata, bool) {
	t := strings.ToLower(typeString(node["@type"]))
	switch {
	case strings.Contains(t, "product"):
		meta := models.PartialMetadata{
			Title: stringValue(node["name"]),
			Image: pickImage(node["image"]),
		}
		if meta.Title == "" {
			meta.Title = stringValue(node["headline"])
		}
		if offer, ok := firstOffer(node["offers"]); ok {
			meta.Price, meta.Currency = offerPrice(offer)
		}
		return meta, !meta.Empty()

	case strings.Contains(t, "offer"):
		price, currency := offerPrice(node)
		if price == "" {
			return models.PartialMetadata{}, false
		}
		return models.PartialMetadata{Price: price, Currency: currency}, true
	}
	return models.PartialMetadata{}, false
}

// typeString renders a JSON-LD @type (string or array) as one string.
func typeString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// pickImage resolves the image property: first element if array, .url if
// object, else the value itself.
func pickImage(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		if len(img) > 0 {
			return pickImage(img[0])
		}
	case map[string]any:
		return stringValue(img["url"])
	}
	return ""
}

// firstOffer returns the offer object: first element if array, else the
// value itself.
func firstOffer(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case []any:
		if len(o) > 0 {
			if m, ok := o[0].(map[string]any); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// offerPrice extracts price and currency from an offer, falling back to a
// nested priceSpecification.
func offerPrice(offer map[string]any) (price, currency string) {
	price = stringValue(offer["price"])
	currency = stringValue(offer["priceCurrency"])
	if spec, ok := offer["priceSpecification"].(map[string]any); ok {
		if price == "" {
			price = stringValue(spec["price"])
		}
		if currency == "" {
			currency = stringValue(spec["priceCurrency"])
		}
	}
	return price, currency
}

// stringValue renders a JSON scalar as a string. Numbers keep their
// shortest representation so "16.99" survives the round trip.
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}
