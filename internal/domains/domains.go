package domains

import (
	"net/url"
	"strings"
)

// Supported is the fixed set of hostnames media may be fetched from.
// Matching is exact (no subdomain wildcarding), so www and bare
// variants are listed separately.
var Supported = []string{
	"www.youtube.com",
	"youtube.com",
	"youtu.be",
	"www.youtu.be",
	"instagram.com",
	"www.instagram.com",
	"www.twitch.tv",
	"twitch.tv",
	"reddit.com",
	"www.reddit.com",
}

// Approved reports whether rawURL parses and its host appears in the
// allow-list. Hosts compare case-insensitively; an unparseable URL is
// simply not approved.
func Approved(rawURL string, allowed []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, domain := range allowed {
		if host == strings.ToLower(domain) {
			return true
		}
	}
	return false
}
