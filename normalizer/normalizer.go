// Package normalizer turns merged parser output into the final, invariant-
// holding extraction result: absolute image URLs, upgraded retailer
// thumbnails, symbol-prefixed prices, clean display domain, and a title
// that is never empty.
package normalizer

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arkaf/wantmeta/models"
)

var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

var wwwPrefix = regexp.MustCompile(`^www\d*\.`)

// Normalize converts merged partial metadata into an ExtractionResult
// anchored at the final (post-redirect) URL. It never fails: invalid
// fields come out empty, and the title falls back to the domain.
func Normalize(meta models.PartialMetadata, finalURL *url.URL) *models.ExtractionResult {
	domain := wwwPrefix.ReplaceAllString(strings.ToLower(finalURL.Hostname()), "")

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = domain
	}

	image := absolutize(meta.Image, finalURL)
	image = upgradeThumbnail(image, finalURL.Hostname())

	price, currency := cleanPrice(meta.Price, meta.Currency)

	return &models.ExtractionResult{
		Title:     title,
		Image:     image,
		Price:     price,
		Currency:  currency,
		Domain:    domain,
		URL:       finalURL.String(),
		Timestamp: time.Now().UnixMilli(),
	}
}

// absolutize resolves an image reference against the final URL. Anything
// that does not resolve to an http(s) URL comes out empty.
func absolutize(image string, base *url.URL) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	resolved, err := base.Parse(image)
	if err != nil {
		return ""
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// cleanPrice strips a raw price down to digits and separators, normalizes
// the decimal separator to ".", and re-attaches a currency symbol from
// the captured currency signal. Unparsable prices come out empty.
func cleanPrice(raw, currency string) (price, code string) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return "", ""
	}

	cleaned = normalizeDecimal(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "", ""
	}

	code = strings.ToUpper(strings.TrimSpace(currency))
	return currencySymbols[code] + strconv.FormatFloat(value, 'f', -1, 64), code
}

// normalizeDecimal rewrites mixed thousands/decimal separators so the
// string parses as a float: "1.299,95" → "1299.95", "1,299.95" → "1299.95",
// "16,99" → "16.99".
func normalizeDecimal(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// Comma is the decimal separator, dots are thousands.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}
