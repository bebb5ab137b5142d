package archive

import (
	"strings"

	"github.com/fourthplaces/rootsignal/internal/archive/urlnorm"
)

// Platform identifies which Service a SourceHandle routes capability calls
// to (spec §4.1.1).
type Platform string

const (
	PlatformInstagram  Platform = "instagram"
	PlatformReddit     Platform = "reddit"
	PlatformXTwitter   Platform = "x_twitter"
	PlatformTikTok     Platform = "tiktok"
	PlatformFacebook   Platform = "facebook"
	PlatformBluesky    Platform = "bluesky"
	PlatformFeed       Platform = "feed"
	PlatformSearch     Platform = "search"
	PlatformGenericWeb Platform = "generic_web"
)

var hostPlatforms = map[string]Platform{
	"instagram.com": PlatformInstagram,
	"reddit.com":    PlatformReddit,
	"x.com":         PlatformXTwitter, // twitter.com normalizes to x.com (urlnorm aliases)
	"tiktok.com":    PlatformTikTok,
	"facebook.com":  PlatformFacebook,
	"bsky.app":      PlatformBluesky,
}

// feedPathHints and searchPathHints catch generic-web URLs that are really
// a feed or a search endpoint dressed up as a page, so a caller handing us
// "example.org/rss.xml" still gets routed to the feed service rather than
// the page service.
var feedPathHints = []string{".rss", ".xml", "/feed", "/rss", "/atom"}
var searchPathHints = []string{"/search", "?q=", "/explore/tags/"}

// DetectPlatform classifies a raw URL into the platform whose Service
// should handle it. Detection runs on the canonicalized host so scheme,
// "www.", and alias differences never change the result.
func DetectPlatform(rawURL string) Platform {
	host := urlnorm.Host(rawURL)
	if p, ok := hostPlatforms[host]; ok {
		return p
	}

	lower := strings.ToLower(rawURL)
	for _, hint := range searchPathHints {
		if strings.Contains(lower, hint) {
			return PlatformSearch
		}
	}
	for _, hint := range feedPathHints {
		if strings.Contains(lower, hint) {
			return PlatformFeed
		}
	}
	return PlatformGenericWeb
}
