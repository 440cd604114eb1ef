// Package hostprofile derives per-origin scanner configuration: which
// subtree is the main content area, scan cadence, minimum text length,
// and the host's media-wrapper patterns. Host-specific knowledge lives
// here and nowhere else.
package hostprofile

import (
	"net/url"
	"strings"
	"time"
)

// Profile is the origin-derived configuration bundle. Computed once at
// scanner startup.
type Profile struct {
	// Host is the matched origin, "" for the generic profile
	Host string

	// MainContentSelectors are tried in order; the first match becomes
	// the scan scope. Fallback is the document body.
	MainContentSelectors []string

	// Debounce is the wait applied to deferred scan scheduling
	Debounce time.Duration

	// Cooldown is the floor between two scan epochs
	Cooldown time.Duration

	// MinTextLength below which text is never classified
	MinTextLength int

	// MediaWrapperClasses are host wrapper patterns that must carry the
	// mitigation alongside a flagged image
	MediaWrapperClasses []string

	// MinImageSize is the smallest rendered dimension worth classifying
	MinImageSize int

	// FilterSmallRects drops tiny UI-sized candidates on social hosts
	FilterSmallRects bool

	// UIRectThreshold is the area below which a rect counts as UI chrome
	UIRectThreshold int
}

// table is ordered: first suffix match wins
var table = []Profile{
	{
		Host: "facebook.com",
		MainContentSelectors: []string{
			"div[role=main]", "div[role=feed]", "#content", "main",
		},
		Debounce:            800 * time.Millisecond,
		Cooldown:            4 * time.Second,
		MinTextLength:       5,
		MediaWrapperClasses: []string{"photo-container", "media-wrapper"},
		MinImageSize:        80,
		FilterSmallRects:    true,
		UIRectThreshold:     2500,
	},
	{
		Host: "twitter.com",
		MainContentSelectors: []string{
			"main[role=main]", "div[data-testid=primaryColumn]", "main",
		},
		Debounce:            600 * time.Millisecond,
		Cooldown:            3 * time.Second,
		MinTextLength:       5,
		MediaWrapperClasses: []string{"tweet-photo", "css-media"},
		MinImageSize:        80,
		FilterSmallRects:    true,
		UIRectThreshold:     2500,
	},
	{
		Host: "x.com",
		MainContentSelectors: []string{
			"main[role=main]", "div[data-testid=primaryColumn]", "main",
		},
		Debounce:            600 * time.Millisecond,
		Cooldown:            3 * time.Second,
		MinTextLength:       5,
		MediaWrapperClasses: []string{"tweet-photo", "css-media"},
		MinImageSize:        80,
		FilterSmallRects:    true,
		UIRectThreshold:     2500,
	},
	{
		Host: "reddit.com",
		MainContentSelectors: []string{
			"main", "div[data-testid=post-container]", "#siteTable",
		},
		Debounce:         700 * time.Millisecond,
		Cooldown:         3 * time.Second,
		MinTextLength:    5,
		MinImageSize:     80,
		FilterSmallRects: true,
		UIRectThreshold:  2000,
	},
	{
		Host: "youtube.com",
		MainContentSelectors: []string{
			"#primary", "#contents", "main",
		},
		Debounce:      900 * time.Millisecond,
		Cooldown:      4 * time.Second,
		MinTextLength: 5,
		MinImageSize:  100,
	},
	{
		Host: "google.com",
		MainContentSelectors: []string{
			"#search", "#rso", "main",
		},
		Debounce:      500 * time.Millisecond,
		Cooldown:      2 * time.Second,
		MinTextLength: 5,
		MinImageSize:  60,
	},
}

// generic is the profile for unrecognised origins
var generic = Profile{
	MainContentSelectors: []string{"main", "article", "#content"},
	Debounce:             500 * time.Millisecond,
	Cooldown:             2 * time.Second,
	MinTextLength:        5,
	MinImageSize:         60,
}

// Resolve returns the profile for a page URL
func Resolve(pageURL string) Profile {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return generic
	}
	host := strings.ToLower(parsed.Hostname())
	for _, p := range table {
		if host == p.Host || strings.HasSuffix(host, "."+p.Host) {
			return p
		}
	}
	return generic
}

// Generic returns the fallback profile
func Generic() Profile { return generic }
