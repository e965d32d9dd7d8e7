// Package simhash provides 64-bit similarity fingerprints of HTML pages.
//
// The fetcher uses it to recognize templated challenge pages: two block
// pages served by the same anti-bot vendor share DOM structure even when
// their text (nonce, ray ID, timestamps) differs, so a near-identical
// structural fingerprint across retry attempts means the rotation is still
// being served the same wall.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// Fingerprint computes a 64-bit SimHash over word-level tokens using
// FNV-64a with bit vector accumulation.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int

	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}

	return fingerprint
}

// FingerprintDOM computes a SimHash of the DOM structure only: tag names
// in document order, shingled into trigrams. Text content and attributes
// are ignored, so challenge pages with rotating nonces still collide.
func FingerprintDOM(htmlStr string) uint64 {
	tags := tagSequence(htmlStr)
	if len(tags) == 0 {
		return 0
	}

	shingles := makeShingles(tags, 3)
	if len(shingles) == 0 {
		// Too few tags for trigrams; hash the raw tag sequence.
		return Fingerprint(strings.Join(tags, " "))
	}

	return Fingerprint(strings.Join(shingles, " "))
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if two fingerprints are within threshold bits of
// each other. Zero fingerprints (empty input) are never similar to anything.
func Similar(a, b uint64, threshold int) bool {
	if a == 0 || b == 0 {
		return false
	}
	return Distance(a, b) <= threshold
}

// tagSequence walks HTML with the tokenizer and collects open tag names in order.
func tagSequence(htmlStr string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	var tags []string

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tags = append(tags, string(tn))
		}
	}
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
