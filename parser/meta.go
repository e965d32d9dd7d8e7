package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arkaf/wantmeta/models"
)

// parseMeta extracts OpenGraph, Twitter card, and plain meta tags.
// Priority per field: og:* over twitter:* over bare tags.
func parseMeta(html string, _ *url.URL) models.PartialMetadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.PartialMetadata{}
	}

	// Collect every meta tag once; some sites put og:* in name= instead
	// of property=.
	tags := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		if content == "" {
			return
		}
		key, ok := s.Attr("property")
		if !ok {
			key, ok = s.Attr("name")
		}
		if !ok {
			return
		}
		key = strings.ToLower(key)
		if _, seen := tags[key]; !seen {
			tags[key] = strings.TrimSpace(content)
		}
	})

	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := tags[k]; v != "" {
				return v
			}
		}
		return ""
	}

	meta := models.PartialMetadata{
		Title:    pick("og:title", "twitter:title"),
		Image:    pick("og:image", "twitter:image", "twitter:image:src"),
		Price:    pick("product:price:amount", "og:price:amount", "price"),
		Currency: pick("product:price:currency", "og:price:currency", "pricecurrency"),
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return meta
}
