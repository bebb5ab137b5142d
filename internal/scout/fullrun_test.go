package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal/internal/config"
)

func TestRegionSeedURLs_MergesSeedsFeedsAndSubreddits(t *testing.T) {
	region := &config.RegionConfig{
		Slug:       "pdx",
		Name:       "Portland, Oregon",
		SeedURLs:   []string{"https://example.org/events"},
		FeedURLs:   []string{"https://example.org/feed.xml"},
		Subreddits: []string{"Portland"},
	}

	got := regionSeedURLs(region)
	assert.Equal(t, []string{
		"https://example.org/events",
		"https://example.org/feed.xml",
		"https://www.reddit.com/r/Portland/",
	}, got)
}

func TestRegionSeedURLs_EmptyRegionYieldsEmptySlice(t *testing.T) {
	region := &config.RegionConfig{Slug: "empty", Name: "Nowhere"}
	assert.Empty(t, regionSeedURLs(region))
}
