package parser

import "testing"

func TestParseMeta_OpenGraph(t *testing.T) {
	html := `<html><head>
	<meta property="og:title" content="Linen Shirt">
	<meta property="og:image" content="https://cdn.shop.test/shirt.jpg">
	<meta property="product:price:amount" content="39.99">
	<meta property="product:price:currency" content="EUR">
	<title>Shop — Linen Shirt</title>
	</head></html>`

	meta := parseMeta(html, nil)
	if meta.Title != "Linen Shirt" {
		t.Errorf("og:title should beat <title>: %q", meta.Title)
	}
	if meta.Image != "https://cdn.shop.test/shirt.jpg" {
		t.Errorf("image = %q", meta.Image)
	}
	if meta.Price != "39.99" || meta.Currency != "EUR" {
		t.Errorf("price/currency = %q/%q", meta.Price, meta.Currency)
	}
}

func TestParseMeta_TwitterFallback(t *testing.T) {
	html := `<head>
	<meta name="twitter:title" content="Desk Lamp">
	<meta name="twitter:image" content="/img/lamp.jpg">
	</head>`

	meta := parseMeta(html, nil)
	if meta.Title != "Desk Lamp" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Image != "/img/lamp.jpg" {
		t.Errorf("image = %q (absolutization is the normalizer's job)", meta.Image)
	}
}

func TestParseMeta_TitleTagFallback(t *testing.T) {
	html := `<html><head><title>  Plain Page  </title></head></html>`
	meta := parseMeta(html, nil)
	if meta.Title != "Plain Page" {
		t.Errorf("title = %q", meta.Title)
	}
}

func TestParseMeta_OGInNameAttribute(t *testing.T) {
	// Some sites write og:* into name= instead of property=.
	html := `<head><meta name="og:title" content="Sloppy Markup"></head>`
	meta := parseMeta(html, nil)
	if meta.Title != "Sloppy Markup" {
		t.Errorf("title = %q", meta.Title)
	}
}

func TestParseMeta_Nothing(t *testing.T) {
	if meta := parseMeta(`<html><body><p>hi</p></body></html>`, nil); !meta.Empty() {
		t.Errorf("expected no contribution, got %+v", meta)
	}
}
