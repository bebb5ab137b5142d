package urlnorm

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips scheme and www", "https://www.Example.org/Path", "example.org/Path"},
		{"strips trailing slash", "https://example.org/path/", "example.org/path"},
		{"lowercases host only", "HTTPS://Example.ORG/CaseSensitivePath", "example.org/CaseSensitivePath"},
		{"twitter aliases to x", "https://twitter.com/someacct", "x.com/someacct"},
		{"www.twitter also aliases", "https://www.twitter.com/someacct", "x.com/someacct"},
		{"strips utm params", "https://example.org/post?utm_source=fb&id=5", "example.org/post?id=5"},
		{"strips fbclid alongside real params", "https://example.org/post?id=5&fbclid=abc", "example.org/post?id=5"},
		{"no query left after stripping all tracking", "https://example.org/post?utm_source=fb", "example.org/post"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonicalize(tc.in); got != tc.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// TestCanonicalize_TrackingParamsDoNotAffectIdentity documents the
// disagreement case the spec calls out directly: two URLs differing only
// by tracking params must canonicalize identically.
func TestCanonicalize_TrackingParamsDoNotAffectIdentity(t *testing.T) {
	a := Canonicalize("https://example.org/event?id=5&utm_source=newsletter&utm_campaign=fall")
	b := Canonicalize("https://example.org/event?id=5")
	if a != b {
		t.Errorf("expected tracking-param variants to canonicalize identically, got %q vs %q", a, b)
	}
}

func TestHost(t *testing.T) {
	if got := Host("https://www.TikTok.com/@someone"); got != "tiktok.com" {
		t.Errorf("Host() = %q, want tiktok.com", got)
	}
}
