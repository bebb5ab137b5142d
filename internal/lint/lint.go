// Package lint implements the Signal Lint promotion gate (spec §4.6): the
// last check between a signal being staged and going live. It never
// re-fetches from the web — every source read replays the archived copy
// internal/archive already persisted — and its failure mode is always
// safe: a signal this package never reaches, or never finishes judging,
// simply stays staged and invisible to public queries.
package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fourthplaces/rootsignal/internal/archive"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
)

// CandidateSignal is one staged signal offered to this run's lint pass.
type CandidateSignal struct {
	SignalType string
	SignalID   string
	SourceURL  string
	Title      string
	Summary    string
}

// Result tallies what one lint run did, by disposition.
type Result struct {
	Passed       int `json:"passed"`
	Corrected    int `json:"corrected"`
	Quarantined  int `json:"quarantined"`
	SourceErrors int `json:"source_errors"`
}

// Lint batches candidates by source URL (spec §4.6), replays each source's
// archived content, and sends each batch to the Linter. A source whose
// archived copy can't be read quarantines every signal drawn from it with
// reason SOURCE_UNREADABLE rather than blocking the whole run.
func Lint(
	ctx context.Context,
	j *durable.Journal,
	store *eventstore.Store,
	a *archive.Archive,
	linter llmclient.Linter,
	runID string,
	candidates []CandidateSignal,
) (Result, error) {
	return durable.Step(ctx, j, runID, "lint", durable.DefaultRetryPolicy, func(ctx context.Context) (Result, error) {
		result := Result{}
		for sourceURL, group := range groupBySource(candidates) {
			content, err := readSource(ctx, a, sourceURL)
			if err != nil {
				slog.Error("lint: source unreadable", "source_url", sourceURL, "error", err)
				for _, c := range group {
					if err := quarantine(ctx, store, runID, c, "SOURCE_UNREADABLE"); err != nil {
						slog.Error("lint: quarantine on unreadable source failed", "signal_id", c.SignalID, "error", err)
						continue
					}
					result.Quarantined++
					result.SourceErrors++
				}
				continue
			}

			batch := llmclient.LintBatch{SourceURL: sourceURL, SourceContent: content}
			for _, c := range group {
				batch.Signals = append(batch.Signals, llmclient.LintSignal{SignalID: c.SignalID, SignalType: c.SignalType, Title: c.Title, Summary: c.Summary})
			}

			verdict, err := linter.Lint(ctx, batch)
			if err != nil {
				return result, fmt.Errorf("lint batch for %s: %w", sourceURL, err)
			}

			byID := make(map[string]CandidateSignal, len(group))
			for _, c := range group {
				byID[c.SignalID] = c
			}

			for _, id := range verdict.Passes {
				c, ok := byID[id]
				if !ok {
					continue
				}
				if err := pass(ctx, store, runID, c); err != nil {
					slog.Error("lint: pass failed", "signal_id", id, "error", err)
					continue
				}
				result.Passed++
			}

			for _, corr := range verdict.Corrections {
				c, ok := byID[corr.SignalID]
				if !ok {
					continue
				}
				if err := correctThenPass(ctx, store, runID, c, corr); err != nil {
					slog.Error("lint: correction failed", "signal_id", corr.SignalID, "field", corr.Field, "error", err)
					continue
				}
				result.Corrected++
			}

			for _, q := range verdict.Quarantines {
				c, ok := byID[q.SignalID]
				if !ok {
					continue
				}
				if err := quarantine(ctx, store, runID, c, q.Reason); err != nil {
					slog.Error("lint: quarantine failed", "signal_id", q.SignalID, "error", err)
					continue
				}
				result.Quarantined++
			}
		}
		return result, nil
	})
}

func groupBySource(candidates []CandidateSignal) map[string][]CandidateSignal {
	groups := make(map[string][]CandidateSignal)
	for _, c := range candidates {
		groups[c.SourceURL] = append(groups[c.SourceURL], c)
	}
	return groups
}

// readSource replays the source's already-archived page content — spec
// §4.6's "never re-fetch from the web" — via CachedOnly, which returns
// archive.ErrNotFound rather than reaching out to the network.
func readSource(ctx context.Context, a *archive.Archive, sourceURL string) (string, error) {
	h, err := a.Source(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("resolve source: %w", err)
	}
	page, err := h.Page().CachedOnly().Fetch(ctx)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return "", fmt.Errorf("no archived copy of %s: %w", sourceURL, err)
		}
		return "", err
	}
	return page.Markdown, nil
}

func pass(ctx context.Context, store *eventstore.Store, runID string, c CandidateSignal) error {
	if _, err := store.Append(ctx, eventstore.AppendInput{
		EventType: eventstore.EventTypeSignalPassed,
		RunID:     runID,
		Actor:     "lint",
		Payload:   &eventstore.SignalPassedPayload{SignalType: c.SignalType, SignalID: c.SignalID},
	}); err != nil {
		return err
	}
	return nil
}

func quarantine(ctx context.Context, store *eventstore.Store, runID string, c CandidateSignal, reason string) error {
	_, err := store.Append(ctx, eventstore.AppendInput{
		EventType: eventstore.EventTypeSignalQuarantined,
		RunID:     runID,
		Actor:     "lint",
		Payload:   &eventstore.SignalQuarantinedPayload{SignalType: c.SignalType, SignalID: c.SignalID, Reason: reason},
	})
	return err
}

// correctThenPass appends the type-specific correction event, then passes
// the signal — spec §4.6's "corrections go staged -> live with corrections
// applied" is two graph-reducer-visible facts, not one.
func correctThenPass(ctx context.Context, store *eventstore.Store, runID string, c CandidateSignal, corr llmclient.LintCorrection) error {
	evtType, payload, err := buildCorrectionEvent(c.SignalType, c.SignalID, corr)
	if err != nil {
		return err
	}
	if _, err := store.Append(ctx, eventstore.AppendInput{
		EventType: evtType,
		RunID:     runID,
		Actor:     "lint",
		Payload:   payload,
	}); err != nil {
		return fmt.Errorf("append correction for %s: %w", c.SignalID, err)
	}
	return pass(ctx, store, runID, c)
}

// buildCorrectionEvent maps a generic (signal_type, field) pair onto the
// typed per-entity Correction sum type eventstore already defines — the
// same allow-listed field set those sum types' variants enumerate is the
// allow-list spec §4.6 asks Signal Lint to enforce; an unrecognized field
// is rejected rather than silently dropped.
func buildCorrectionEvent(signalType, signalID string, corr llmclient.LintCorrection) (eventstore.EventType, eventstore.Payload, error) {
	switch signalType {
	case "gathering":
		switch corr.Field {
		case "title":
			return eventstore.EventTypeGatheringCorrected, &eventstore.GatheringCorrectedPayload{SignalID: signalID, Correction: eventstore.GatheringCorrectionTitle{New: corr.NewValue}}, nil
		case "starts_at":
			t, err := time.Parse(time.RFC3339, corr.NewValue)
			if err != nil {
				return "", nil, fmt.Errorf("lint: starts_at correction %q is not RFC3339: %w", corr.NewValue, err)
			}
			return eventstore.EventTypeGatheringCorrected, &eventstore.GatheringCorrectedPayload{SignalID: signalID, Correction: eventstore.GatheringCorrectionStartsAt{New: t}}, nil
		case "action_url":
			return eventstore.EventTypeGatheringCorrected, &eventstore.GatheringCorrectedPayload{SignalID: signalID, Correction: eventstore.GatheringCorrectionActionURL{New: corr.NewValue}}, nil
		}
	case "aid":
		switch corr.Field {
		case "title":
			return eventstore.EventTypeAidCorrected, &eventstore.AidCorrectedPayload{SignalID: signalID, Correction: eventstore.AidCorrectionTitle{New: corr.NewValue}}, nil
		case "availability":
			return eventstore.EventTypeAidCorrected, &eventstore.AidCorrectedPayload{SignalID: signalID, Correction: eventstore.AidCorrectionAvailability{New: corr.NewValue}}, nil
		}
	case "need":
		switch corr.Field {
		case "title":
			return eventstore.EventTypeNeedCorrected, &eventstore.NeedCorrectedPayload{SignalID: signalID, Correction: eventstore.NeedCorrectionTitle{New: corr.NewValue}}, nil
		case "what_needed":
			return eventstore.EventTypeNeedCorrected, &eventstore.NeedCorrectedPayload{SignalID: signalID, Correction: eventstore.NeedCorrectionWhatNeeded{New: corr.NewValue}}, nil
		}
	case "notice":
		switch corr.Field {
		case "title":
			return eventstore.EventTypeNoticeCorrected, &eventstore.NoticeCorrectedPayload{SignalID: signalID, Correction: eventstore.NoticeCorrectionTitle{New: corr.NewValue}}, nil
		case "effective_date":
			t, err := time.Parse(time.RFC3339, corr.NewValue)
			if err != nil {
				return "", nil, fmt.Errorf("lint: effective_date correction %q is not RFC3339: %w", corr.NewValue, err)
			}
			return eventstore.EventTypeNoticeCorrected, &eventstore.NoticeCorrectedPayload{SignalID: signalID, Correction: eventstore.NoticeCorrectionEffectiveDate{New: &t}}, nil
		}
	case "tension":
		switch corr.Field {
		case "title":
			return eventstore.EventTypeTensionCorrected, &eventstore.TensionCorrectedPayload{SignalID: signalID, Correction: eventstore.TensionCorrectionTitle{New: corr.NewValue}}, nil
		case "what_would_help":
			return eventstore.EventTypeTensionCorrected, &eventstore.TensionCorrectedPayload{SignalID: signalID, Correction: eventstore.TensionCorrectionWhatWouldHelp{New: corr.NewValue}}, nil
		}
	}
	return "", nil, fmt.Errorf("lint: field %q is not correctable on signal_type %q", corr.Field, signalType)
}
