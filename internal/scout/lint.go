package scout

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"github.com/fourthplaces/rootsignal/internal/archive"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/lint"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
)

// Lint is the thin scout-side entry point for spec §4.4's "Lint"
// sub-workflow: resolve this run's still-staged signals from ent and hand
// them to internal/lint.Lint, which owns the archive replay and the
// pass/correct/quarantine event writes. Independently invocable as "lint
// this run's signals" without running the rest of FullRun.
func Lint(
	ctx context.Context,
	j *durable.Journal,
	db *stdsql.DB,
	store *eventstore.Store,
	a *archive.Archive,
	linter llmclient.Linter,
	runID string,
) (lint.Result, error) {
	staged, err := stagedCandidatesForRun(ctx, db, runID)
	if err != nil {
		return lint.Result{}, fmt.Errorf("lint: load candidates: %w", err)
	}

	candidates := make([]lint.CandidateSignal, len(staged))
	for i, c := range staged {
		candidates[i] = lint.CandidateSignal{
			SignalType: c.SignalType,
			SignalID:   c.SignalID,
			SourceURL:  c.SourceURL,
			Title:      c.Title,
			Summary:    c.Summary,
		}
	}

	return lint.Lint(ctx, j, store, a, linter, runID, candidates)
}
