package fetcher

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// RequestProfile is one immutable browser fingerprint used for a fetch
// attempt. Profiles are selected sequentially per attempt so that a
// blocked fingerprint is not retried twice in a row.
type RequestProfile struct {
	Name           string
	UserAgent      string
	AcceptLanguage string
	Accept         string
	Referer        string

	// CookieName/CookieValue form a synthetic session cookie. Some bot
	// walls score cookieless requests higher; a throwaway cookie is enough
	// to look like a returning visitor.
	CookieName  string
	CookieValue string
}

// Apply sets the profile's headers and cookie on a request.
func (p *RequestProfile) Apply(req *http.Request) {
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if p.Referer != "" {
		req.Header.Set("Referer", p.Referer)
	}
	if p.CookieName != "" {
		req.AddCookie(&http.Cookie{Name: p.CookieName, Value: p.CookieValue})
	}
}

const defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"

// DefaultProfiles returns the built-in profile pool: desktop Chrome on
// Windows and macOS, mobile Safari on iPhone and iPad. Cookie values are
// randomized once per process so repeated runs don't share a fingerprint.
func DefaultProfiles() []RequestProfile {
	return []RequestProfile{
		{
			Name:           "chrome-win",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			AcceptLanguage: "en-US,en;q=0.9",
			Accept:         defaultAccept,
			Referer:        "https://www.google.com/",
			CookieName:     "session",
			CookieValue:    randomToken(),
		},
		{
			Name:           "chrome-mac",
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			AcceptLanguage: "en-GB,en;q=0.9",
			Accept:         defaultAccept,
			Referer:        "https://www.bing.com/",
			CookieName:     "visitor",
			CookieValue:    randomToken(),
		},
		{
			Name:           "safari-iphone",
			UserAgent:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
			AcceptLanguage: "en-US,en;q=0.9",
			Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			Referer:        "https://www.google.com/",
			CookieName:     "session",
			CookieValue:    randomToken(),
		},
		{
			Name:           "safari-ipad",
			UserAgent:      "Mozilla/5.0 (iPad; CPU OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
			AcceptLanguage: "en-GB,en;q=0.9",
			Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			Referer:        "",
			CookieName:     "visitor",
			CookieValue:    randomToken(),
		},
	}
}

// randomToken generates a short random hex string for synthetic cookies.
func randomToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
