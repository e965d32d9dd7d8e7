package parser

import "testing"

func TestParseSiteSpecific_Amazon(t *testing.T) {
	html := `<html><body>
	<span id="productTitle">  Amazon Basics Headphones  </span>
	<img id="landingImage" data-old-hires="https://m.media-amazon.com/images/I/71x.jpg" src="https://m.media-amazon.com/images/I/71x._SX300_.jpg">
	<span class="a-price"><span class="a-offscreen">£16.99</span></span>
	</body></html>`

	meta := parseSiteSpecific(html, mustURL(t, "https://www.amazon.co.uk/dp/B0BVM1PSYN"))
	if meta.Title != "Amazon Basics Headphones" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Image != "https://m.media-amazon.com/images/I/71x.jpg" {
		t.Errorf("data-old-hires should win: %q", meta.Image)
	}
	if meta.Price != "£16.99" {
		t.Errorf("price = %q", meta.Price)
	}
}

func TestParseSiteSpecific_AmazonRegexFallback(t *testing.T) {
	html := `<html><body><script>var state = {"priceAmount": "24.99"};</script></body></html>`
	meta := parseSiteSpecific(html, mustURL(t, "https://amazon.de/dp/X"))
	if meta.Price != "24.99" {
		t.Errorf("regex rule should recover embedded price, got %q", meta.Price)
	}
}

func TestParseSiteSpecific_Zara(t *testing.T) {
	html := `<html><body>
	<h1 class="product-detail-info__product-name">Oversized Blazer</h1>
	<span class="price__amount">£49.99</span>
	</body></html>`

	meta := parseSiteSpecific(html, mustURL(t, "https://www.zara.com/uk/en/blazer-p012.html"))
	if meta.Title != "Oversized Blazer" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Price != "£49.99" {
		t.Errorf("price = %q", meta.Price)
	}
}

func TestParseSiteSpecific_HMNextData(t *testing.T) {
	html := `<script id="__NEXT_DATA__" type="application/json">
	{"props":{"product":{"displayName":"Ribbed Tank Top","image":"https://image.hm.com/p/1.jpg","price":"GBP 12.99"}}}
	</script>`

	meta := parseSiteSpecific(html, mustURL(t, "https://www2.hm.com/en_gb/p/1"))
	if meta.Title != "Ribbed Tank Top" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Image != "https://image.hm.com/p/1.jpg" {
		t.Errorf("image = %q", meta.Image)
	}
	if meta.Price != "12.99" {
		t.Errorf("price = %q", meta.Price)
	}
}

func TestParseSiteSpecific_UnknownHost(t *testing.T) {
	html := `<h1 class="product-name">Should Not Match</h1>`
	if meta := parseSiteSpecific(html, mustURL(t, "https://shop.example.com/x")); !meta.Empty() {
		t.Errorf("unregistered host must contribute nothing, got %+v", meta)
	}
}

func TestSiteRegistryRulesWellFormed(t *testing.T) {
	// Registry selectors parse at package init; a bad one panics before any
	// test runs. Verify every rule ended up with exactly one mechanism.
	for _, site := range siteRegistry {
		for _, rules := range [][]FieldRule{site.Title, site.Image, site.Price} {
			for _, rule := range rules {
				hasSelector := rule.selector != nil
				hasPattern := rule.pattern != nil
				if hasSelector == hasPattern {
					t.Errorf("%s: rule must carry a selector or a pattern, not both/neither", site.HostContains)
				}
			}
		}
	}
}

func TestLookupSite(t *testing.T) {
	if _, ok := lookupSite("www.amazon.co.uk"); !ok {
		t.Error("amazon.co.uk should match the amazon. entry")
	}
	if _, ok := lookupSite("shop.example.com"); ok {
		t.Error("unregistered host should not match")
	}
}
