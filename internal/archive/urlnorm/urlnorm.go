// Package urlnorm is the URL-canonicalization routine the Archive uses for
// source identity and platform detection. It is the only normalizer in
// internal/archive; the scrape pipeline's dedup host comparison
// (internal/scout's hostOf, which takes url.Parse's raw Host) and Actor
// minting do not call it.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"
)

// platformAliases maps a host to the canonical host it should be treated
// as identical to (spec §4.1.1: "twitter.com ≡ x.com").
var platformAliases = map[string]string{
	"twitter.com": "x.com",
}

// trackingParams are stripped from the query string before canonicalization.
// Their presence or absence must never change whether two URLs are
// considered the same source.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"igshid":       true,
	"ref":          true,
	"ref_src":      true,
	"si":           true,
	"s":            true,
}

// Canonicalize normalizes a raw URL into the form used as a Source's
// canonical_value (spec §4.1.1, §3.2): lowercase host with "www." and
// platform aliases collapsed, scheme dropped, trailing slash stripped,
// tracking query params removed, remaining query params sorted for a
// stable string. Returns the input unchanged if it doesn't parse as a URL.
func Canonicalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}

	host := canonicalHost(u.Host)
	path := strings.TrimSuffix(u.Path, "/")
	query := stripTrackingParams(u.RawQuery)

	out := host + path
	if query != "" {
		out += "?" + query
	}
	return out
}

// Host returns just the canonicalized host portion of a URL, used by
// platform detection to route a SourceHandle to the right capability set.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return canonicalHost(u.Host)
}

func canonicalHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	if alias, ok := platformAliases[host]; ok {
		host = alias
	}
	return host
}

// StripTrackingParams removes known tracking query parameters from a raw
// query string (the part after "?"), keeping everything else in sorted
// order for a deterministic result.
func StripTrackingParams(rawQuery string) string {
	return stripTrackingParams(rawQuery)
}

func stripTrackingParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if trackingParams[strings.ToLower(k)] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kept := url.Values{}
	for _, k := range keys {
		kept[k] = values[k]
	}
	return kept.Encode()
}
