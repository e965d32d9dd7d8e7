package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/arkaf/wantmeta/models"
)

// FieldRule is one way to extract a single field from a page: either a
// CSS selector (optionally reading an attribute instead of text) or a
// regex over the raw HTML whose first capture group is the value.
type FieldRule struct {
	selector cascadia.Sel
	attr     string
	pattern  *regexp.Regexp
}

// mustParseSelector parses a registry selector, panicking on a bad one.
// Registry selectors are static, so a failure is a programming error.
func mustParseSelector(selector string) cascadia.Sel {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		panic("parser: bad site selector " + selector + ": " + err.Error())
	}
	return sel
}

// css builds a selector rule reading the matched element's text.
func css(selector string) FieldRule {
	return FieldRule{selector: mustParseSelector(selector)}
}

// cssAttr builds a selector rule reading an attribute of the matched element.
func cssAttr(selector, attr string) FieldRule {
	return FieldRule{selector: mustParseSelector(selector), attr: attr}
}

// rx builds a regex rule over the raw HTML.
func rx(pattern string) FieldRule {
	return FieldRule{pattern: regexp.MustCompile(pattern)}
}

// SiteRules is the per-retailer extraction recipe. Rules per field run in
// order; the first non-empty value wins.
type SiteRules struct {
	// HostContains selects this entry when the final URL's hostname
	// contains the substring.
	HostContains string

	Title []FieldRule
	Image []FieldRule
	Price []FieldRule
}

// siteRegistry holds heuristics tuned to retailers whose pages defeat the
// structured-data and meta strategies. Lookup is first-match on hostname
// substring. Selectors and JSON regexes follow each site's known markup.
var siteRegistry = []SiteRules{
	{
		HostContains: "amazon.",
		Title: []FieldRule{
			css("#productTitle"),
			css("span#title"),
		},
		Image: []FieldRule{
			cssAttr("img#landingImage", "data-old-hires"),
			cssAttr("img#landingImage", "src"),
			cssAttr(`img[data-a-image-name="landingImage"]`, "src"),
		},
		Price: []FieldRule{
			css("span.a-price span.a-offscreen"),
			css("span.a-price-whole"),
			rx(`"priceAmount"\s*:\s*"?([\d.,]+)`),
			rx(`data-price="([\d.,]+)"`),
		},
	},
	{
		HostContains: "zara.com",
		Title: []FieldRule{
			css("h1.product-detail-info__product-name"),
			css(`h1[class*="product-name"]`),
		},
		Image: []FieldRule{
			cssAttr("img.product-detail-images__image", "src"),
			cssAttr(`img[class*="product-image"]`, "src"),
			rx(`"media"\s*:\s*\{"images"\s*:\s*\[\{"url"\s*:\s*"([^"]+)"`),
		},
		Price: []FieldRule{
			css("span.price__amount"),
			css(`span[data-qa*="price"]`),
			css(`span[data-testid*="price"]`),
		},
	},
	{
		HostContains: "hm.com",
		Title: []FieldRule{
			css("h1.product-name"),
			css(`h1[class*="product-title"]`),
			rx(`"displayName"\s*:\s*"([^"]+)"`),
		},
		Image: []FieldRule{
			cssAttr(`img[class*="product-image"]`, "src"),
			cssAttr(`img[class*="main-image"]`, "src"),
			rx(`"image"\s*:\s*"(https?:[^"]+\.(?:jpg|jpeg|png|webp)[^"]*)"`),
		},
		Price: []FieldRule{
			css(`span[class*="product-price"]`),
			css(`span[class*="price"]`),
			rx(`"price"\s*:\s*"?(?:GBP|EUR|USD)?\s*([\d.,]+)`),
		},
	},
	{
		HostContains: "doverstreetmarket.com",
		Title: []FieldRule{
			css("h1.product-title"),
			css("h1.product-name"),
		},
		Image: []FieldRule{
			cssAttr("img.product-image", "src"),
			cssAttr("img.main-image", "src"),
		},
		Price: []FieldRule{
			css("span.product-price"),
			css("span.price"),
		},
	},
}

// parseSiteSpecific applies the registry entry matching the final URL's
// hostname, if any. It runs regardless of what earlier strategies found,
// specifically to backfill the fields they missed.
func parseSiteSpecific(rawHTML string, finalURL *url.URL) models.PartialMetadata {
	if finalURL == nil {
		return models.PartialMetadata{}
	}

	rules, ok := lookupSite(finalURL.Hostname())
	if !ok {
		return models.PartialMetadata{}
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return models.PartialMetadata{}
	}

	return models.PartialMetadata{
		Title: applyRules(rules.Title, doc, rawHTML),
		Image: applyRules(rules.Image, doc, rawHTML),
		Price: applyRules(rules.Price, doc, rawHTML),
	}
}

// lookupSite returns the first registry entry whose substring matches host.
func lookupSite(host string) (*SiteRules, bool) {
	host = strings.ToLower(host)
	for i := range siteRegistry {
		if strings.Contains(host, siteRegistry[i].HostContains) {
			return &siteRegistry[i], true
		}
	}
	return nil, false
}

// applyRules runs field rules in order and returns the first non-empty value.
func applyRules(rules []FieldRule, doc *html.Node, rawHTML string) string {
	for _, rule := range rules {
		if v := rule.apply(doc, rawHTML); v != "" {
			return v
		}
	}
	return ""
}

func (r FieldRule) apply(doc *html.Node, rawHTML string) string {
	if r.pattern != nil {
		if m := r.pattern.FindStringSubmatch(rawHTML); m != nil {
			return strings.TrimSpace(m[1])
		}
		return ""
	}

	node := cascadia.Query(doc, r.selector)
	if node == nil {
		return ""
	}
	if r.attr != "" {
		for _, a := range node.Attr {
			if a.Key == r.attr {
				return strings.TrimSpace(a.Val)
			}
		}
		return ""
	}
	return strings.TrimSpace(nodeText(node))
}

// nodeText concatenates the text descendants of a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
