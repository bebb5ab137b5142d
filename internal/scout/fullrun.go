package scout

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/internal/archive"
	"github.com/fourthplaces/rootsignal/internal/config"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/graph/enrichment"
	"github.com/fourthplaces/rootsignal/internal/lint"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
	"github.com/fourthplaces/rootsignal/internal/weaver"
	"github.com/fourthplaces/rootsignal/internal/weaver/verify"
)

// FullRunDeps bundles the long-lived, process-wide dependencies every
// FullRun invocation shares — one built per process, not per run, the
// way cmd/rootsignal/main.go wires it once at startup.
type FullRunDeps struct {
	Client  *ent.Client
	DB      *stdsql.DB
	Archive *archive.Archive
	Store   *eventstore.Store
	Journal *durable.Journal
	Locks   *durable.RegionLock

	// LLM backs Extractor, Embedder, Clusterer, and Linter — one gRPC
	// client satisfies all four (internal/llmclient.GRPCClient), the
	// same single-provider-per-capability-set shape every sub-workflow
	// below already accepts.
	LLM *llmclient.GRPCClient

	// Scanner flags PII in dispatch bodies before SituationWeaver writes
	// them — internal/masking.NewPatternScanner satisfies this.
	Scanner verify.PIIScanner

	// Cache is the cross-run embedding cache Synthesis consults before
	// spending an Embed call on text it has already vectorized —
	// internal/graph/enrichment.NewDBEmbeddingCache satisfies this.
	Cache                 enrichment.EmbeddingCache
	EmbeddingModelVersion int
}

// FullRunResult reports what one end-to-end region run produced, one
// field per sub-workflow, for the operator-facing run summary.
type FullRunResult struct {
	RunID      string               `json:"run_id"`
	Region     string               `json:"region"`
	Bootstrap  BootstrapResult      `json:"bootstrap"`
	Actors     ActorDiscoveryResult `json:"actors"`
	Scrape     ScrapeResult         `json:"scrape"`
	Synthesis  SynthesisResult      `json:"synthesis"`
	Weave      weaver.WeaveResult   `json:"weave"`
	Lint       lint.Result          `json:"lint"`
	Supervisor SupervisorResult     `json:"supervisor"`
}

// FullRun composes every independently-invocable sub-workflow spec
// §4.4.1 names into one region's scheduled pass: Bootstrap seeds cold-
// start sources, ActorDiscovery wires curated actors, Scrape reaps
// expired gatherings and extracts new signals, Synthesis recomputes the
// derived graph and links mentions, SituationWeaver clusters staged
// signals into situations and writes dispatches, Lint promotes or
// quarantines what SituationWeaver didn't already reject, and
// Supervisor closes out with the mechanical QA pass. A RegionLock
// guarantees only one FullRun executes per region at a time (spec §5);
// a region already running returns durable.ErrRegionBusy rather than
// queuing, since a second concurrent attempt for the same region is
// never useful.
func FullRun(
	ctx context.Context,
	deps FullRunDeps,
	region *config.RegionConfig,
	budget *config.BudgetConfig,
	runID string,
) (FullRunResult, error) {
	held, err := deps.Locks.Acquire(ctx, region.Slug, runID)
	if err != nil {
		return FullRunResult{}, fmt.Errorf("full run: acquire region lock: %w", err)
	}
	defer func() { _ = held.Release() }()

	result := FullRunResult{RunID: runID, Region: region.Slug}

	seedURLs := regionSeedURLs(region)
	result.Bootstrap, err = Bootstrap(ctx, deps.Journal, deps.Archive, region.Slug, runID, seedURLs)
	if err != nil {
		return result, fmt.Errorf("full run: bootstrap: %w", err)
	}

	actorSeeds := make([]ActorSeed, len(region.ActorSeeds))
	for i, s := range region.ActorSeeds {
		actorSeeds[i] = ActorSeed{Name: s.Name, URL: s.URL, ActorType: s.ActorType, LocationName: s.LocationName}
	}
	result.Actors, err = ActorDiscovery(ctx, deps.Journal, deps.Client, deps.Archive, deps.Store, runID, actorSeeds)
	if err != nil {
		return result, fmt.Errorf("full run: actor discovery: %w", err)
	}

	sources := make([]ScrapeSource, 0, len(seedURLs))
	for _, url := range seedURLs {
		sources = append(sources, ScrapeSource{URL: url, Phase: "A"})
	}

	tracker := NewBudgetTracker(budget.PerRunLimitCents)
	rc := NewRunContext(region.Slug, runID)
	result.Scrape, err = Scrape(ctx, deps.Journal, deps.Client, deps.DB, deps.Archive, deps.Store, deps.LLM, deps.LLM, tracker, rc, runID, sources)
	if err != nil {
		return result, fmt.Errorf("full run: scrape: %w", err)
	}

	result.Synthesis, err = Synthesis(ctx, deps.Journal, deps.Client, deps.DB, deps.Store, deps.LLM, deps.Cache, deps.EmbeddingModelVersion, runID, rc.Mentions())
	if err != nil {
		return result, fmt.Errorf("full run: synthesis: %w", err)
	}

	result.Weave, err = SituationWeaver(ctx, deps.Journal, deps.Client, deps.DB, deps.Store, deps.LLM, deps.Scanner, runID, region.Slug)
	if err != nil {
		return result, fmt.Errorf("full run: situation weaver: %w", err)
	}

	result.Lint, err = Lint(ctx, deps.Journal, deps.DB, deps.Store, deps.Archive, deps.LLM, runID)
	if err != nil {
		return result, fmt.Errorf("full run: lint: %w", err)
	}

	enricher := enrichment.NewEnricher(deps.DB, deps.LLM, deps.Cache, deps.EmbeddingModelVersion)
	result.Supervisor, err = Supervisor(ctx, deps.Journal, deps.Client, deps.DB, deps.Store, enricher, runID)
	if err != nil {
		return result, fmt.Errorf("full run: supervisor: %w", err)
	}

	return result, nil
}

// regionSeedURLs flattens a region's curated seed URLs, feed URLs, and
// subreddit names into the one flat list Bootstrap/Scrape consume.
// Subreddits resolve to their public listing URL, which
// internal/archive/platform.go's host table already maps to
// PlatformReddit — the same platform resolution any other reddit.com
// URL in SeedURLs or FeedURLs would get.
func regionSeedURLs(region *config.RegionConfig) []string {
	urls := make([]string, 0, len(region.SeedURLs)+len(region.FeedURLs)+len(region.Subreddits))
	urls = append(urls, region.SeedURLs...)
	urls = append(urls, region.FeedURLs...)
	for _, sub := range region.Subreddits {
		urls = append(urls, "https://www.reddit.com/r/"+sub+"/")
	}
	return urls
}
