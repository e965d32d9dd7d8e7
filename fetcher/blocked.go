package fetcher

import (
	"strings"

	"github.com/arkaf/wantmeta/simhash"
)

// blockMarkers are substrings whose presence marks a response as an
// anti-bot challenge rather than real content. Vendor names and the
// boilerplate phrasing their walls share.
var blockMarkers = []string{
	"access denied",
	"akamai",
	"cloudflare ray id",
	"attention required",
	"incapsula",
	"perimeterx",
	"datadome",
	"captcha",
	"blocked",
	"bot protection",
	"security check",
	"unusual traffic",
	"are you a robot",
	"verify you are a human",
	"pardon our interruption",
}

// minPlausibleBody is the body size below which a response is treated as
// a placeholder rather than a product page. Real retail pages are never
// this small.
const minPlausibleBody = 512

// fingerprintSimilarity is the Hamming-distance threshold under which two
// DOM fingerprints count as the same template.
const fingerprintSimilarity = 6

// classifyBlocked decides whether a response body is an anti-bot challenge.
// prevBlocked is the DOM fingerprint of the last attempt that classified
// as blocked (0 if none); a body structurally near-identical to it is the
// same challenge template served to a new fingerprint.
func classifyBlocked(body string, prevBlocked uint64) (blocked bool, fp uint64) {
	fp = simhash.FingerprintDOM(body)

	if len(body) < minPlausibleBody {
		return true, fp
	}

	lower := strings.ToLower(body)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return true, fp
		}
	}

	if simhash.Similar(fp, prevBlocked, fingerprintSimilarity) {
		return true, fp
	}

	return false, fp
}
