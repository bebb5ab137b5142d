package archive

import "testing"

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		url  string
		want Platform
	}{
		{"https://www.instagram.com/explore/tags/mutualaid", PlatformInstagram},
		{"https://reddit.com/r/sometown", PlatformReddit},
		{"https://twitter.com/someacct", PlatformXTwitter},
		{"https://x.com/someacct", PlatformXTwitter},
		{"https://www.tiktok.com/@someone", PlatformTikTok},
		{"https://facebook.com/somepage", PlatformFacebook},
		{"https://bsky.app/profile/someone.bsky.social", PlatformBluesky},
		{"https://example.org/feed.rss", PlatformFeed},
		{"https://example.org/search?q=flood", PlatformSearch},
		{"https://example.org/about-us", PlatformGenericWeb},
	}
	for _, tc := range cases {
		if got := DetectPlatform(tc.url); got != tc.want {
			t.Errorf("DetectPlatform(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
