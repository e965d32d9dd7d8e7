package parser

import "testing"

func TestParseFallback_ProductImage(t *testing.T) {
	html := `<html><body>
	<img src="/assets/logo.png" width="64" height="64">
	<img src="https://cdn.shop.test/favicon.ico">
	<img src="https://cdn.shop.test/products/chair-front.jpg" alt="Armchair front view">
	</body></html>`

	meta := parseFallback(html, nil)
	if meta.Image != "https://cdn.shop.test/products/chair-front.jpg" {
		t.Errorf("image = %q", meta.Image)
	}
}

func TestParseFallback_SkipsSmallAndDecorative(t *testing.T) {
	html := `<body>
	<img src="https://cdn.shop.test/icon-cart.png">
	<img src="https://cdn.shop.test/thumb.jpg" width="80" height="80">
	<img src="https://cdn.shop.test/header-banner.jpg">
	</body>`

	if meta := parseFallback(html, nil); meta.Image != "" {
		t.Errorf("decorative/small images must be skipped, got %q", meta.Image)
	}
}

func TestParseFallback_LazyLoadedImage(t *testing.T) {
	html := `<body><img data-src="https://cdn.shop.test/products/sofa.jpg" class="lazyload"></body>`
	meta := parseFallback(html, nil)
	if meta.Image != "https://cdn.shop.test/products/sofa.jpg" {
		t.Errorf("data-src should be honored, got %q", meta.Image)
	}
}

func TestParseFallback_CurrencyPrefixedPrice(t *testing.T) {
	html := `<body><p>Our bestseller is now only £16.99 while stocks last.</p></body>`
	meta := parseFallback(html, nil)
	if meta.Price != "16.99" {
		t.Errorf("price = %q", meta.Price)
	}
	if meta.Currency != "GBP" {
		t.Errorf("currency = %q, want GBP from the £ sign", meta.Currency)
	}
}

func TestParseFallback_EuroAndDollar(t *testing.T) {
	meta := parseFallback(`<body><span>€ 45,50</span></body>`, nil)
	if meta.Price != "45,50" || meta.Currency != "EUR" {
		t.Errorf("got %q/%q", meta.Price, meta.Currency)
	}

	meta = parseFallback(`<body><span>$120</span></body>`, nil)
	if meta.Price != "120" || meta.Currency != "USD" {
		t.Errorf("got %q/%q", meta.Price, meta.Currency)
	}
}

func TestParseFallback_NoSignals(t *testing.T) {
	if meta := parseFallback(`<body><p>nothing for sale here</p></body>`, nil); !meta.Empty() {
		t.Errorf("expected no contribution, got %+v", meta)
	}
}
