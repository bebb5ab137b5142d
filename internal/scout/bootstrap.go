package scout

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/internal/archive"
	"github.com/fourthplaces/rootsignal/internal/durable"
)

// BootstrapResult reports what Bootstrap seeded for a region, journaled
// so a replay of a crashed run doesn't re-canonicalize every seed URL.
type BootstrapResult struct {
	Region       string   `json:"region"`
	SourcesAdded []string `json:"sources_added"`
}

// Bootstrap seeds a region with its cold-start source list (spec
// §4.4.1): platform accounts, feeds, subreddits, and any other
// well-known URL an operator has curated for this region. Each seed URL
// just needs to exist as an Archive source — Scrape is what actually
// reads content from it. Independently invocable for "new region
// onboarding" without running the rest of FullRun.
func Bootstrap(ctx context.Context, j *durable.Journal, a *archive.Archive, region, runID string, seedURLs []string) (BootstrapResult, error) {
	return durable.Step(ctx, j, runID, "bootstrap", durable.DefaultRetryPolicy, func(ctx context.Context) (BootstrapResult, error) {
		result := BootstrapResult{Region: region}
		for _, url := range seedURLs {
			h, err := a.Source(ctx, url)
			if err != nil {
				return BootstrapResult{}, fmt.Errorf("bootstrap seed %s: %w", url, err)
			}
			result.SourcesAdded = append(result.SourcesAdded, h.SourceID())
		}
		return result, nil
	})
}
