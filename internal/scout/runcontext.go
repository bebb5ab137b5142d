// Package scout implements the durable, region-keyed workflow spec
// §4.4 names: independently-invocable sub-workflows (Bootstrap,
// ActorDiscovery, Scrape, Synthesis, SituationWeaver, Lint, Supervisor)
// composed by FullRun, each suspension point wrapped in
// internal/durable.Step so a crash mid-run resumes rather than restarts.
package scout

import (
	"sync"

	"github.com/fourthplaces/rootsignal/internal/graph/dedup"
)

// RunContext holds per-run state that never needs cross-workflow
// serialization (spec §4.4.2): an in-run embedding cache (keyed by
// input text, since the same sentence showing up on two pages in one
// run shouldn't cost a second embedding call), URL → source ID
// resolution (keyed by the URL as given), and per-signal-type counts for
// end-of-run metrics. FullRun creates one per run; Scrape fills it and
// Synthesis reads its mentions.
type RunContext struct {
	Region string
	RunID  string

	mu            sync.Mutex
	embeddingKeys map[string][]float32
	canonicalKeys map[string]string
	signalCounts  map[string]int
	seenTitles    map[string][]dedup.TitleMatch // keyed by signal type, in-run only
	mentions      []DiscoveredMention
}

// NewRunContext starts an empty per-run scratch space for region/runID.
func NewRunContext(region, runID string) *RunContext {
	return &RunContext{
		Region:        region,
		RunID:         runID,
		embeddingKeys: make(map[string][]float32),
		canonicalKeys: make(map[string]string),
		signalCounts:  make(map[string]int),
		seenTitles:    make(map[string][]dedup.TitleMatch),
	}
}

// CachedEmbedding returns a previously-computed vector for text within
// this run, if any.
func (rc *RunContext) CachedEmbedding(text string) ([]float32, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	v, ok := rc.embeddingKeys[text]
	return v, ok
}

// CacheEmbedding remembers a vector for text for the rest of this run.
func (rc *RunContext) CacheEmbedding(text string, v []float32) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.embeddingKeys[text] = v
}

// CanonicalSourceID resolves a URL to the source ID scout already
// upserted it under earlier in this run. Nothing in this package calls
// it: scrapeOneSource resolves every URL through the Archive.
func (rc *RunContext) CanonicalSourceID(url string) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	id, ok := rc.canonicalKeys[url]
	return id, ok
}

// RememberSourceID records url's resolved source ID for the rest of
// this run.
func (rc *RunContext) RememberSourceID(url, sourceID string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.canonicalKeys[url] = sourceID
}

// IncrementSignalCount bumps the per-type counter used for end-of-run
// metrics and returns the new total.
func (rc *RunContext) IncrementSignalCount(signalType string) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.signalCounts[signalType]++
	return rc.signalCounts[signalType]
}

// SignalCounts returns a snapshot of this run's per-type signal counts.
func (rc *RunContext) SignalCounts() map[string]int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make(map[string]int, len(rc.signalCounts))
	for k, v := range rc.signalCounts {
		out[k] = v
	}
	return out
}

// TitleMatchesInRun returns the in-run batch_title_dedup candidates
// collected so far for signalType — the exact-title-within-batch
// collapse step (spec §4.4.3 step 2), distinct from dedup.Decide's
// against-the-graph check.
func (rc *RunContext) TitleMatchesInRun(signalType string) []dedup.TitleMatch {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]dedup.TitleMatch(nil), rc.seenTitles[signalType]...)
}

// RecordTitleInRun adds a freshly-created signal's title to this run's
// in-memory batch-dedup index.
func (rc *RunContext) RecordTitleInRun(signalType string, m dedup.TitleMatch) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.seenTitles[signalType] = append(rc.seenTitles[signalType], m)
}

// RecordMention remembers a freshly-created signal's mentioned_entities
// names so Synthesis can resolve them against existing Actor rows
// without a second graph read.
func (rc *RunContext) RecordMention(signalType, signalID string, names []string) {
	if len(names) == 0 {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.mentions = append(rc.mentions, DiscoveredMention{SignalType: signalType, SignalID: signalID, Names: names})
}

// Mentions returns every mention recorded so far this run.
func (rc *RunContext) Mentions() []DiscoveredMention {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]DiscoveredMention(nil), rc.mentions...)
}
