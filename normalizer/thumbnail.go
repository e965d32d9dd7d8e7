package normalizer

import (
	"regexp"
	"strings"
)

// thumbnailUpgrade rewrites a retailer's fixed-size thumbnail suffix to
// its known largest-available token. Pure string substitution, no fetch.
type thumbnailUpgrade struct {
	hostContains string
	patterns     []*regexp.Regexp
	replacement  string
}

// amazonSizeTokens covers the size-suffix conventions Amazon CDN image
// URLs use for thumbnails; all of them rewrite to the full-size token.
var amazonSizeTokens = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\._SX\d+_\.jpg`),
	regexp.MustCompile(`(?i)\._SY\d+_\.jpg`),
	regexp.MustCompile(`(?i)\._SL\d+_\.jpg`),
	regexp.MustCompile(`(?i)\._QL\d+_\.jpg`),
	regexp.MustCompile(`(?i)\._UF\d+,\d+_\.jpg`),
	regexp.MustCompile(`(?i)\._AC_SS\d+_\.jpg`),
	regexp.MustCompile(`(?i)\._AC_UL\d+_\.jpg`),
	regexp.MustCompile(`(?i)\.__?AC_SX\d+_SY\d+(_QL\d+)?(_ML\d+)?_\.jpg`),
}

var thumbnailUpgrades = []thumbnailUpgrade{
	{
		hostContains: "amazon.",
		patterns:     amazonSizeTokens,
		replacement:  "._AC_SL1500_.jpg",
	},
	{
		// Amazon serves product images from its media CDN as well.
		hostContains: "media-amazon.com",
		patterns:     amazonSizeTokens,
		replacement:  "._AC_SL1500_.jpg",
	},
}

// upgradeThumbnail rewrites known low-resolution thumbnail suffixes when
// the page host (or the image's own host) belongs to a known retailer.
func upgradeThumbnail(image, pageHost string) string {
	if image == "" {
		return image
	}
	host := strings.ToLower(pageHost)
	for _, up := range thumbnailUpgrades {
		if !strings.Contains(host, up.hostContains) && !strings.Contains(strings.ToLower(image), up.hostContains) {
			continue
		}
		for _, p := range up.patterns {
			if p.MatchString(image) {
				return p.ReplaceAllString(image, up.replacement)
			}
		}
	}
	return image
}
