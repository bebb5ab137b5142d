// Package llmclient is the out-of-scope LLM provider boundary (spec
// §6.1/§6.2): six narrow interfaces — Extractor, Embedder,
// ImageDescriber, Transcriber, Clusterer, Linter — plus a gRPC transport
// adapter reaching
// whatever provider sits behind them. Nothing in this package decides
// what to extract or how to score a result; internal/scout and
// internal/graph/enrichment own that, against these interfaces, so a
// provider swap or a test double never touches their code.
package llmclient

import "context"

// ExtractedSignal is the extractor's strict typed sum: exactly one of
// the five *Fields pointers is non-nil, matching SignalType. Grounded on
// spec §6.1's "output schema is a strict typed sum (one variant per
// signal type)" — decoded straight off the wire, it carries the same
// field shape internal/eventstore's *DiscoveredPayload structs persist,
// so internal/scout/synthesis can go from one to the other with a
// field-by-field copy instead of a second parse step.
type ExtractedSignal struct {
	SignalType string `json:"signal_type"`

	Title             string            `json:"title"`
	Summary           string            `json:"summary"`
	SourceURL         string            `json:"source_url"`
	ContentDate       *string           `json:"content_date"`
	AboutLat          *float64          `json:"about_lat"`
	AboutLng          *float64          `json:"about_lng"`
	AboutLocationName string            `json:"about_location_name"`
	MentionedEntities []MentionedEntity `json:"mentioned_entities"`
	ResourceTags      []ResourceTag     `json:"resource_tags"`

	Gathering *GatheringFields `json:"gathering,omitempty"`
	Aid       *AidFields       `json:"aid,omitempty"`
	Need      *NeedFields      `json:"need,omitempty"`
	Notice    *NoticeFields    `json:"notice,omitempty"`
	Tension   *TensionFields   `json:"tension,omitempty"`
}

// MentionedEntity mirrors eventstore.MentionedEntity — duplicated rather
// than imported so this package's wire contract doesn't depend on the
// event log's internal package, matching the same duplication choice
// eventstore itself made against ent/schema.
type MentionedEntity struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	Role       string `json:"role"`
}

// ResourceTagRole is the closed set spec §6.1 names for a resource tag.
type ResourceTagRole string

const (
	ResourceTagRequires ResourceTagRole = "requires"
	ResourceTagPrefers  ResourceTagRole = "prefers"
	ResourceTagOffers   ResourceTagRole = "offers"
)

// ResourceTag is one (tag, role) pair the extractor asserted for a
// signal — e.g. an Aid offering "diapers" or a Need requiring
// "generator".
type ResourceTag struct {
	Tag  string          `json:"tag"`
	Role ResourceTagRole `json:"role"`
}

// GatheringFields is the gathering-specific variant of ExtractedSignal.
type GatheringFields struct {
	StartsAt    string  `json:"starts_at"`
	EndsAt      *string `json:"ends_at"`
	Organizer   string  `json:"organizer"`
	IsRecurring bool    `json:"is_recurring"`
	ActionURL   string  `json:"action_url"`
}

// AidFields is the aid-specific variant of ExtractedSignal.
type AidFields struct {
	Availability string `json:"availability"`
	IsOngoing    bool   `json:"is_ongoing"`
	ActionURL    string `json:"action_url"`
}

// NeedFields is the need-specific variant of ExtractedSignal.
type NeedFields struct {
	Urgency    string `json:"urgency"`
	WhatNeeded string `json:"what_needed"`
	Goal       string `json:"goal"`
}

// NoticeFields is the notice-specific variant of ExtractedSignal.
type NoticeFields struct {
	Severity        string  `json:"severity"`
	Category        string  `json:"category"`
	EffectiveDate   *string `json:"effective_date"`
	SourceAuthority string  `json:"source_authority"`
}

// TensionFields is the tension-specific variant of ExtractedSignal.
type TensionFields struct {
	Severity      string `json:"severity"`
	WhatWouldHelp string `json:"what_would_help"`
}

// ActorContext is what the extractor already knows about named actors in
// a region — passed in so it can resolve "the Riverside Food Pantry"
// against an existing Actor instead of minting a duplicate.
type ActorContext struct {
	Name        string `json:"name"`
	EntityType  string `json:"entity_type"`
	CanonicalID string `json:"canonical_id"`
}

// Extractor is spec §6.1's abstract extraction capability: markdown in,
// a strict typed sum of candidate signals out. The system prompt rules
// (no fabricated URLs, every claim grounded in the input block, null
// over defaulted for unknown fields) are the provider's responsibility,
// not the caller's — this interface only names the contract, not how a
// concrete provider enforces it.
type Extractor interface {
	Extract(ctx context.Context, markdown string, region string, tagVocabulary []string, actorContext []ActorContext) ([]ExtractedSignal, error)
}

// Embedder computes embedding vectors for a batch of input texts, in the
// order given — the same contract internal/graph/enrichment's Embedder
// interface names, duplicated here (not imported) so llmclient stays the
// single package that knows the wire transport exists at all.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ImageDescriber supports media enrichment with an OCR focus (spec
// §6.1's describe_image).
type ImageDescriber interface {
	DescribeImage(ctx context.Context, data []byte, mimeType string, prompt string) (string, error)
}

// Transcriber supports audio/video transcription (spec §6.1's
// transcribe).
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

// ClusterSignal is one candidate signal offered to the weaver's LLM
// verdict call — trimmed to what a clustering decision needs, not the
// full signal row.
type ClusterSignal struct {
	SignalID   string  `json:"signal_id"`
	SignalType string  `json:"signal_type"`
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	CauseHeat  float64 `json:"cause_heat"`
}

// ClusterSituation is one existing candidate situation the verdict call
// may assign a signal to instead of minting a new one.
type ClusterSituation struct {
	SituationID string `json:"situation_id"`
	Headline    string `json:"headline"`
	Lede        string `json:"lede"`
	Arc         string `json:"arc"`
}

// ClusterBatch is one weaving pass's candidate cluster (spec §4.5.1 step
// 2: "one LLM call per cluster").
type ClusterBatch struct {
	Region     string             `json:"region"`
	Signals    []ClusterSignal    `json:"signals"`
	Situations []ClusterSituation `json:"situations"`
}

// SignalAssignment is one signal's verdict: SituationID is empty when
// the verdict is NEW (matching NewSituationID against NewSituations).
type SignalAssignment struct {
	SignalID    string `json:"signal_id"`
	SituationID string `json:"situation_id,omitempty"`
	NewSituationID string `json:"new_situation_id,omitempty"`
}

// NewSituationSpec is one situation the verdict mints fresh.
type NewSituationSpec struct {
	TempID   string `json:"temp_id"`
	Headline string `json:"headline"`
	Lede     string `json:"lede"`
}

// DispatchSpec is one dispatch body the verdict writes, already
// containing its [signal:UUID] citation tokens (spec §4.5.1 step 3/4).
type DispatchSpec struct {
	SituationID  string   `json:"situation_id"` // may be a NewSituationSpec.TempID
	DispatchType string   `json:"dispatch_type"`
	Body         string   `json:"body"`
	CitedSignals []string `json:"cited_signals"`
}

// CausalLink is an optional CAUSED_BY edge the verdict asserts between
// two situations.
type CausalLink struct {
	FromSituationID string `json:"from_situation_id"`
	ToSituationID   string `json:"to_situation_id"`
}

// ClusterVerdict is the weaver's LLM call's structured output (spec
// §4.5.1 step 3): per-signal assignment, new-situation specs, dispatch
// bodies, and optional causal links.
type ClusterVerdict struct {
	Assignments    []SignalAssignment `json:"assignments"`
	NewSituations  []NewSituationSpec `json:"new_situations"`
	Dispatches     []DispatchSpec     `json:"dispatches"`
	CausalLinks    []CausalLink       `json:"causal_links"`
}

// Clusterer is the weaver's abstract clustering capability (spec
// §4.5.1): one candidate cluster of signals plus existing nearby
// situations in, a structured assignment verdict out. The prompt rules
// (every factual sentence cited, present competing causes side by side,
// describe what happened not what it means, names only for actors) are
// the provider's system-prompt responsibility, same as Extractor's rules
// are its own.
type Clusterer interface {
	Cluster(ctx context.Context, batch ClusterBatch) (ClusterVerdict, error)
}

// LintSignal is one staged signal offered to the Signal Lint gate (spec
// §4.6), trimmed to what fact-checking against the archived source needs.
type LintSignal struct {
	SignalID   string `json:"signal_id"`
	SignalType string `json:"signal_type"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
}

// LintBatch is one source-grouped lint pass: the archived page content plus
// every staged signal that was extracted from it.
type LintBatch struct {
	SourceURL     string       `json:"source_url"`
	SourceContent string       `json:"source_content"`
	Signals       []LintSignal `json:"signals"`
}

// LintCorrection rewrites one allow-listed field on one staged signal
// (spec §4.6) — immutable fields (type, source_url, id) are never valid
// here; internal/lint rejects any Field it doesn't recognize.
type LintCorrection struct {
	SignalID string `json:"signal_id"`
	Field    string `json:"field"`
	NewValue string `json:"new_value"`
	Reason   string `json:"reason"`
}

// LintQuarantine is one staged signal the lint pass rejects outright.
type LintQuarantine struct {
	SignalID string `json:"signal_id"`
	Reason   string `json:"reason"`
}

// LintVerdict is the lint pass's structured output: every staged signal in
// the batch ends up in exactly one of Passes (untouched), Corrections
// (rewritten then passed), or Quarantines.
type LintVerdict struct {
	Passes      []string         `json:"passes"`
	Corrections []LintCorrection `json:"corrections"`
	Quarantines []LintQuarantine `json:"quarantines"`
}

// Linter is the Signal Lint gate's abstract capability (spec §4.6): a
// source's archived content plus its candidate signals in, a verdict
// assigning every signal to pass/correct/quarantine out. The underlying
// provider is expected to use a different model family than Extractor's
// (so lint catches what extraction alone would rubber-stamp) and to reach
// for read_source/correct_signal/quarantine_signal/pass_signal tool calls
// internally — none of that tool-use mechanics crosses this interface,
// same as Extractor's prompt rules never do.
type Linter interface {
	Lint(ctx context.Context, batch LintBatch) (LintVerdict, error)
}
