package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arkaf/wantmeta/models"
)

// skipImageKeywords marks image URLs and class names that are never the
// product shot.
var skipImageKeywords = []string{
	"icon", "logo", "favicon", "sprite", "placeholder", "error",
	"default", "banner", "header", "footer", "pixel", "spacer", "avatar",
}

var imageExtPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|webp)(\?|$)`)

// currencyPricePattern matches the first currency-symbol-prefixed numeric
// token in page text, e.g. "£16.99".
var currencyPricePattern = regexp.MustCompile(`([£$€])\s?(\d{1,5}(?:[.,]\d{1,2})?)`)

var symbolToCurrency = map[string]string{
	"£": "GBP",
	"$": "USD",
	"€": "EUR",
}

// parseFallback is the last-resort strategy: any image that looks like a
// product shot, and the first currency-prefixed number in the page text.
func parseFallback(rawHTML string, _ *url.URL) models.PartialMetadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return models.PartialMetadata{}
	}

	meta := models.PartialMetadata{Image: findProductImage(doc)}

	if m := currencyPricePattern.FindStringSubmatch(doc.Text()); m != nil {
		meta.Price = m[2]
		meta.Currency = symbolToCurrency[m[1]]
	}

	return meta
}

// findProductImage scans all img tags for the first src that is not an
// icon/logo/placeholder and looks big enough to be a product shot.
func findProductImage(doc *goquery.Document) string {
	var found string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			// Lazy-loaded images keep the real URL in data-src.
			src, ok = s.Attr("data-src")
			if !ok || src == "" {
				return true
			}
		}

		if !looksLikeProductImage(src, s) {
			return true
		}

		found = src
		return false
	})
	return found
}

func looksLikeProductImage(src string, s *goquery.Selection) bool {
	if strings.HasPrefix(src, "data:") {
		return false
	}
	if !imageExtPattern.MatchString(src) {
		return false
	}

	haystack := strings.ToLower(src)
	if class, ok := s.Attr("class"); ok {
		haystack += " " + strings.ToLower(class)
	}
	if alt, ok := s.Attr("alt"); ok {
		haystack += " " + strings.ToLower(alt)
	}
	for _, kw := range skipImageKeywords {
		if strings.Contains(haystack, kw) {
			return false
		}
	}

	// Reject images declared too small to be a product shot. Missing
	// dimensions pass: most product images size via CSS.
	const minSide = 200
	for _, attr := range []string{"width", "height"} {
		if v, ok := s.Attr(attr); ok {
			if n, err := strconv.Atoi(strings.TrimSuffix(v, "px")); err == nil && n < minSide {
				return false
			}
		}
	}

	return true
}
