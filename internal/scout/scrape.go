package scout

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/gathering"
	"github.com/fourthplaces/rootsignal/internal/archive"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/graph/dedup"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
)

// signalTable maps a signal type to its physical table, duplicated from
// internal/graph/enrichment's own unexported table rather than imported —
// the two packages read the same five tables for unrelated reasons
// (enrichment for derived columns, scrape for title/embedding dedup
// lookups) and neither should depend on the other's internals for it.
var signalTable = map[string]string{
	"gathering": "gatherings",
	"aid":       "aids",
	"need":      "needs",
	"notice":    "notices",
	"tension":   "tensions",
}

// ScrapeSource is one Archive-owned page to read this run, tagged by
// which phase should fetch it (spec §4.4.2): Phase A reads
// tension-origin sources first so a Situation's candidate signals exist
// before Phase B consults response-origin sources looking for resources
// that answer them.
type ScrapeSource struct {
	URL           string
	Phase         string // "A" tension-origin | "B" response-origin
	TagVocabulary []string
}

// ScrapeResult reports what one Scrape invocation produced, journaled so
// a crash mid-run resumes without re-charging the budget for sources
// already processed.
type ScrapeResult struct {
	SignalCounts map[string]int `json:"signal_counts"`
	Reaped       int            `json:"reaped"`
	SpentCents   int64          `json:"spent_cents"`
}

// Scrape is the core extraction sub-workflow (spec §4.4.2/§4.4.3):
// reap expired time-bound signals, fetch each source's page in two
// phases, run the extractor over it, and for every candidate signal run
// the extraction contract — score_and_filter, batch_title_dedup,
// embedding, dedup_verdict — before appending the event the verdict
// implies. Independently invocable as "rescrape these sources" without
// running the rest of FullRun.
func Scrape(
	ctx context.Context,
	j *durable.Journal,
	client *ent.Client,
	db *stdsql.DB,
	a *archive.Archive,
	store *eventstore.Store,
	extractor llmclient.Extractor,
	embedder llmclient.Embedder,
	budget *BudgetTracker,
	rc *RunContext,
	runID string,
	sources []ScrapeSource,
) (ScrapeResult, error) {
	return durable.Step(ctx, j, runID, "scrape", durable.DefaultRetryPolicy, func(ctx context.Context) (ScrapeResult, error) {
		reaped, err := reapExpiredGatherings(ctx, client, store, runID)
		if err != nil {
			return ScrapeResult{}, fmt.Errorf("reap expired gatherings: %w", err)
		}

		var phaseA, phaseB []ScrapeSource
		for _, s := range sources {
			if s.Phase == "B" {
				phaseB = append(phaseB, s)
			} else {
				phaseA = append(phaseA, s)
			}
		}

		for _, phase := range [][]ScrapeSource{phaseA, phaseB} {
			for _, src := range phase {
				if budget.Exhausted() {
					if _, aerr := store.Append(ctx, eventstore.AppendInput{
						EventType: eventstore.EventTypeBudgetCheckpoint,
						RunID:     runID,
						Actor:     "scout.scrape",
						Payload:   budget.Checkpoint(runID),
					}); aerr != nil {
						slog.Error("scrape: budget checkpoint append failed", "error", aerr)
					}
					continue
				}
				if serr := scrapeOneSource(ctx, client, db, a, store, extractor, embedder, budget, rc, runID, src); serr != nil {
					slog.Error("scrape: source failed", "url", src.URL, "error", serr)
					continue
				}
			}
		}

		return ScrapeResult{
			SignalCounts: rc.SignalCounts(),
			Reaped:       reaped,
			SpentCents:   budget.Spent(),
		}, nil
	})
}

// reapExpiredGatherings marks every live Gathering whose ends_at has
// passed as expired (spec §3.2's lifecycle edge case) — the only signal
// type with a hard expiry the reducer can't infer from an event alone,
// since nothing "happens" to make an event past; time itself does.
func reapExpiredGatherings(ctx context.Context, client *ent.Client, store *eventstore.Store, runID string) (int, error) {
	expired, err := client.Gathering.Query().
		Where(gathering.EndsAtLT(time.Now()), gathering.RetractedAtIsNil()).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("query expired gatherings: %w", err)
	}
	for _, g := range expired {
		if _, err := store.Append(ctx, eventstore.AppendInput{
			EventType: eventstore.EventTypeEntityExpired,
			RunID:     runID,
			Actor:     "scout.scrape",
			Payload: &eventstore.EntityExpiredPayload{
				SignalType: "gathering",
				SignalID:   g.ID,
				Reason:     "ends_at elapsed",
			},
		}); err != nil {
			return 0, fmt.Errorf("append entity_expired for gathering %s: %w", g.ID, err)
		}
	}
	return len(expired), nil
}

func scrapeOneSource(
	ctx context.Context,
	client *ent.Client,
	db *stdsql.DB,
	a *archive.Archive,
	store *eventstore.Store,
	extractor llmclient.Extractor,
	embedder llmclient.Embedder,
	budget *BudgetTracker,
	rc *RunContext,
	runID string,
	src ScrapeSource,
) error {
	h, err := a.Source(ctx, src.URL)
	if err != nil {
		return fmt.Errorf("resolve source %s: %w", src.URL, err)
	}
	rc.RememberSourceID(src.URL, h.SourceID())

	page, err := h.Page().Fetch(ctx)
	if _, aerr := store.Append(ctx, eventstore.AppendInput{
		EventType: eventstore.EventTypeURLScraped,
		RunID:     runID,
		Actor:     "scout.scrape",
		Payload: &eventstore.URLScrapedPayload{
			URL:        src.URL,
			StatusCode: statusFor(err),
			BytesRead:  int64(len(page.Markdown)),
		},
	}); aerr != nil {
		slog.Error("scrape: url_scraped append failed", "url", src.URL, "error", aerr)
	}
	if err != nil {
		return fmt.Errorf("fetch page %s: %w", src.URL, err)
	}
	if !budget.Allow(extractionCostCents) {
		return nil
	}

	candidates, err := extractor.Extract(ctx, page.Markdown, rc.Region, src.TagVocabulary, nil)
	if _, aerr := store.Append(ctx, eventstore.AppendInput{
		EventType: eventstore.EventTypeLLMExtractionCompleted,
		RunID:     runID,
		Actor:     "scout.scrape",
		Payload: &eventstore.LLMExtractionCompletedPayload{
			SourceURL:      src.URL,
			CandidateCount: len(candidates),
			CostCents:      extractionCostCents,
		},
	}); aerr != nil {
		slog.Error("scrape: llm_extraction_completed append failed", "url", src.URL, "error", aerr)
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", src.URL, err)
	}

	for _, cand := range candidates {
		if err := processCandidate(ctx, client, db, store, embedder, rc, runID, h, page, cand); err != nil {
			slog.Error("scrape: candidate processing failed", "url", src.URL, "title", cand.Title, "error", err)
		}
	}
	return nil
}

// extractionCostCents is a flat per-call estimate charged against the
// run's budget at extraction time — the real per-token cost isn't known
// until the provider responds, so this gates admission, not final spend.
const extractionCostCents = 2

func statusFor(err error) int {
	if err != nil {
		return 0
	}
	return 200
}

// processCandidate runs the extraction contract (spec §4.4.3) for one
// candidate signal: score_and_filter, batch_title_dedup, embedding,
// dedup_verdict, then the event the verdict implies.
func processCandidate(
	ctx context.Context,
	client *ent.Client,
	db *stdsql.DB,
	store *eventstore.Store,
	embedder llmclient.Embedder,
	rc *RunContext,
	runID string,
	h *archive.SourceHandle,
	page archive.Page,
	cand llmclient.ExtractedSignal,
) error {
	signalType, fields := classify(cand)
	if signalType == "" {
		return nil
	}

	if strings.TrimSpace(cand.Title) == "" {
		_, err := store.Append(ctx, eventstore.AppendInput{
			EventType: eventstore.EventTypeObservationRejected,
			RunID:     runID,
			Actor:     "scout.scrape",
			Payload:   &eventstore.ObservationRejectedPayload{SourceURL: cand.SourceURL, Reason: "empty title"},
		})
		return err
	}
	if signalType != "notice" && cand.ContentDate == nil {
		_, err := store.Append(ctx, eventstore.AppendInput{
			EventType: eventstore.EventTypeExtractionDroppedNoDate,
			RunID:     runID,
			Actor:     "scout.scrape",
			Payload:   &eventstore.ExtractionDroppedNoDatePayload{SourceURL: cand.SourceURL, Title: cand.Title},
		})
		return err
	}

	host := hostOf(cand.SourceURL)
	if host == "" {
		host = hostOf(h.CanonicalValue())
	}
	normalizedTitle := dedup.NormalizeTitle(cand.Title)

	inRunMatches := rc.TitleMatchesInRun(signalType)
	dbMatches, err := titleMatchesFromDB(ctx, db, signalType, cand.Title)
	if err != nil {
		return fmt.Errorf("title match lookup: %w", err)
	}
	titleMatches := append(append([]dedup.TitleMatch(nil), inRunMatches...), dbMatches...)

	text := cand.Title
	if cand.Summary != "" {
		text = cand.Title + "\n" + cand.Summary
	}
	vec, cached := rc.CachedEmbedding(text)
	if !cached {
		vecs, eerr := embedder.Embed(ctx, []string{text})
		if eerr != nil {
			return fmt.Errorf("embed candidate: %w", eerr)
		}
		if len(vecs) == 1 {
			vec = vecs[0]
			rc.CacheEmbedding(text, vec)
		}
	}

	embeddingMatch, err := embeddingMatchFromDB(ctx, db, signalType, vec)
	if err != nil {
		return fmt.Errorf("embedding match lookup: %w", err)
	}

	verdict := dedup.Decide(dedup.Candidate{Type: signalType, Title: cand.Title, Host: host}, titleMatches, embeddingMatch)

	switch v := verdict.(type) {
	case dedup.CorroborateVerdict:
		if _, err := store.Append(ctx, eventstore.AppendInput{
			EventType: eventstore.EventTypeObservationCorroborated,
			RunID:     runID,
			Actor:     "scout.scrape",
			Payload:   &eventstore.ObservationCorroboratedPayload{SignalType: signalType, SignalID: v.ExistingID, SourceID: h.SourceID()},
		}); err != nil {
			return err
		}
		return recordCitation(ctx, store, runID, signalType, v.ExistingID, page)

	case dedup.RefreshVerdict:
		_, err := store.Append(ctx, eventstore.AppendInput{
			EventType: eventstore.EventTypeFreshnessConfirmed,
			RunID:     runID,
			Actor:     "scout.scrape",
			Payload:   &eventstore.FreshnessConfirmedPayload{SignalType: signalType, SignalID: v.ExistingID, ConfirmedAt: time.Now()},
		})
		return err

	case dedup.CreateVerdict:
		signalID := uuid.NewString()
		core := eventstore.SignalCore{
			SignalID:          signalID,
			Title:             cand.Title,
			Summary:           cand.Summary,
			SourceURL:         cand.SourceURL,
			SourceID:          h.SourceID(),
			ExtractedAt:       time.Now(),
			ContentDate:       parseContentDate(cand.ContentDate),
			AboutLat:          cand.AboutLat,
			AboutLng:          cand.AboutLng,
			AboutLocationName: cand.AboutLocationName,
			MentionedEntities: convertEntities(cand.MentionedEntities),
			CreatedBy:         "scout.scrape",
			ScoutRunID:        runID,
		}
		evtType, evt, err := buildDiscoveryEvent(signalType, core, fields)
		if err != nil {
			return err
		}
		if _, err := store.Append(ctx, eventstore.AppendInput{
			EventType: evtType,
			RunID:     runID,
			Actor:     "scout.scrape",
			Payload:   evt,
		}); err != nil {
			return fmt.Errorf("append %s discovery: %w", signalType, err)
		}
		rc.RecordTitleInRun(signalType, dedup.TitleMatch{ExistingID: signalID, Title: cand.Title, Host: host})
		rc.RecordMention(signalType, signalID, mentionNames(cand.MentionedEntities))
		rc.IncrementSignalCount(signalType)
		return recordCitation(ctx, store, runID, signalType, signalID, page)
	}
	return nil
}

func recordCitation(ctx context.Context, store *eventstore.Store, runID, signalType, signalID string, page archive.Page) error {
	_, err := store.Append(ctx, eventstore.AppendInput{
		EventType: eventstore.EventTypeCitationRecorded,
		RunID:     runID,
		Actor:     "scout.scrape",
		Payload: &eventstore.CitationRecordedPayload{
			SignalType: signalType,
			SignalID:   signalID,
			EvidenceID: page.ID,
			ArchiveRef: "page:" + page.ID,
		},
	})
	return err
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

func parseContentDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil
	}
	return &t
}

func mentionNames(in []llmclient.MentionedEntity) []string {
	if in == nil {
		return nil
	}
	names := make([]string, len(in))
	for i, e := range in {
		names[i] = e.Name
	}
	return names
}

func convertEntities(in []llmclient.MentionedEntity) []eventstore.MentionedEntity {
	if in == nil {
		return nil
	}
	out := make([]eventstore.MentionedEntity, len(in))
	for i, e := range in {
		out[i] = eventstore.MentionedEntity{Name: e.Name, EntityType: e.EntityType, Role: e.Role}
	}
	return out
}

// classify picks the one non-nil variant off an ExtractedSignal and
// returns its signal-type string alongside the typed fields, matching
// the strict-typed-sum contract llmclient.ExtractedSignal documents.
func classify(cand llmclient.ExtractedSignal) (string, any) {
	switch {
	case cand.Gathering != nil:
		return "gathering", cand.Gathering
	case cand.Aid != nil:
		return "aid", cand.Aid
	case cand.Need != nil:
		return "need", cand.Need
	case cand.Notice != nil:
		return "notice", cand.Notice
	case cand.Tension != nil:
		return "tension", cand.Tension
	default:
		return "", nil
	}
}

// buildDiscoveryEvent returns one of the five concrete *DiscoveredPayload
// types alongside its matching EventType — eventstore.Payload's own
// event-type accessor is unexported, so the type has to travel beside
// the value rather than be recovered from it outside that package.
func buildDiscoveryEvent(signalType string, core eventstore.SignalCore, fields any) (eventstore.EventType, eventstore.Payload, error) {
	switch signalType {
	case "gathering":
		f, ok := fields.(*llmclient.GatheringFields)
		if !ok {
			return "", nil, fmt.Errorf("gathering candidate missing gathering fields")
		}
		return eventstore.EventTypeGatheringDiscovered, &eventstore.GatheringDiscoveredPayload{
			SignalCore:  core,
			StartsAt:    parseTimeOrZero(f.StartsAt),
			EndsAt:      parseContentDate(f.EndsAt),
			Organizer:   f.Organizer,
			IsRecurring: f.IsRecurring,
			ActionURL:   f.ActionURL,
		}, nil
	case "aid":
		f := fields.(*llmclient.AidFields)
		return eventstore.EventTypeAidDiscovered, &eventstore.AidDiscoveredPayload{SignalCore: core, Availability: f.Availability, IsOngoing: f.IsOngoing, ActionURL: f.ActionURL}, nil
	case "need":
		f := fields.(*llmclient.NeedFields)
		return eventstore.EventTypeNeedDiscovered, &eventstore.NeedDiscoveredPayload{SignalCore: core, Urgency: f.Urgency, WhatNeeded: f.WhatNeeded, Goal: f.Goal}, nil
	case "notice":
		f := fields.(*llmclient.NoticeFields)
		return eventstore.EventTypeNoticeDiscovered, &eventstore.NoticeDiscoveredPayload{
			SignalCore:      core,
			Severity:        f.Severity,
			Category:        f.Category,
			EffectiveDate:   parseContentDate(f.EffectiveDate),
			SourceAuthority: f.SourceAuthority,
		}, nil
	case "tension":
		f := fields.(*llmclient.TensionFields)
		return eventstore.EventTypeTensionDiscovered, &eventstore.TensionDiscoveredPayload{SignalCore: core, Severity: f.Severity, WhatWouldHelp: f.WhatWouldHelp}, nil
	default:
		return "", nil, fmt.Errorf("unknown signal type %q", signalType)
	}
}

func parseTimeOrZero(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// titleMatchesFromDB looks up existing live signals of signalType whose
// title could match the candidate, scoped to the last 30 days since a
// restated title from a year-old signal isn't the same occurrence (spec
// §4.4.3's batch_title_dedup is phrased as cross-run, not unbounded).
func titleMatchesFromDB(ctx context.Context, db *stdsql.DB, signalType, title string) ([]dedup.TitleMatch, error) {
	table, ok := signalTable[signalType]
	if !ok {
		return nil, nil
	}
	query := fmt.Sprintf(
		`SELECT signal_id, title, source_url FROM %s WHERE retracted_at IS NULL AND extracted_at > now() - interval '30 days'`,
		table,
	)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dedup.TitleMatch
	for rows.Next() {
		var id, t, sourceURL string
		if err := rows.Scan(&id, &t, &sourceURL); err != nil {
			return nil, err
		}
		out = append(out, dedup.TitleMatch{ExistingID: id, Title: t, Host: hostOf(sourceURL)})
	}
	return out, rows.Err()
}

// embeddingMatchFromDB finds the nearest existing embedded signal of
// signalType to vec, the same pgvector nearest-neighbor shape
// internal/graph/enrichment uses for its own passes.
func embeddingMatchFromDB(ctx context.Context, db *stdsql.DB, signalType string, vec []float32) (*dedup.EmbeddingMatch, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	table, ok := signalTable[signalType]
	if !ok {
		return nil, nil
	}
	query := fmt.Sprintf(
		`SELECT signal_id, source_url, 1 - (embedding <=> $1) AS similarity
		   FROM %s
		  WHERE embedding IS NOT NULL AND retracted_at IS NULL
		  ORDER BY embedding <=> $1
		  LIMIT 1`,
		table,
	)
	row := db.QueryRowContext(ctx, query, pgvector.NewVector(vec))
	var id, sourceURL string
	var similarity float64
	if err := row.Scan(&id, &sourceURL, &similarity); err != nil {
		if err == stdsql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &dedup.EmbeddingMatch{ExistingID: id, Similarity: similarity, Host: hostOf(sourceURL)}, nil
}
