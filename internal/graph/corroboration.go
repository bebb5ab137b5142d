package graph

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// applyObservationCorroborated increments corroboration_count — unlike a
// correction, corroboration never rewrites a fact, it only adds to a
// running tally the weaver's temperature formula and the dedup pass both
// read (spec §4.5.2, §4.3.3).
func (r *Reducer) applyObservationCorroborated(ctx context.Context, seq int64, p *eventstore.ObservationCorroboratedPayload) (Result, error) {
	switch p.SignalType {
	case "gathering":
		existing, err := r.client.Gathering.Get(ctx, p.SignalID)
		if err != nil {
			return NoOp, guardedGetErr(err, "gathering", p.SignalID)
		}
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		_, err = r.client.Gathering.UpdateOneID(p.SignalID).
			AddCorroborationCount(1).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	case "aid":
		existing, err := r.client.Aid.Get(ctx, p.SignalID)
		if err != nil {
			return NoOp, guardedGetErr(err, "aid", p.SignalID)
		}
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		_, err = r.client.Aid.UpdateOneID(p.SignalID).
			AddCorroborationCount(1).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	case "need":
		existing, err := r.client.Need.Get(ctx, p.SignalID)
		if err != nil {
			return NoOp, guardedGetErr(err, "need", p.SignalID)
		}
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		_, err = r.client.Need.UpdateOneID(p.SignalID).
			AddCorroborationCount(1).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	case "notice":
		existing, err := r.client.Notice.Get(ctx, p.SignalID)
		if err != nil {
			return NoOp, guardedGetErr(err, "notice", p.SignalID)
		}
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		_, err = r.client.Notice.UpdateOneID(p.SignalID).
			AddCorroborationCount(1).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	case "tension":
		existing, err := r.client.Tension.Get(ctx, p.SignalID)
		if err != nil {
			return NoOp, guardedGetErr(err, "tension", p.SignalID)
		}
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		_, err = r.client.Tension.UpdateOneID(p.SignalID).
			AddCorroborationCount(1).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("observation_corroborated: unknown signal_type %q", p.SignalType)
	}
}

// applySourceChanged writes an admin/discovery-driven field update onto
// Source. Source carries no SeqGuardMixin — it isn't part of the
// replayable signal graph proper, so the last writer wins, same as the
// teacher's own config-reload handling.
func (r *Reducer) applySourceChanged(ctx context.Context, p *eventstore.SourceChangedPayload) (Result, error) {
	update := r.client.Source.UpdateOneID(p.SourceID)
	switch c := p.Change.(type) {
	case eventstore.SourceChangeActive:
		update = update.SetActive(c.New)
	case eventstore.SourceChangeWeight:
		update = update.SetWeight(c.New)
	default:
		return NoOp, fmt.Errorf("source_changed: unhandled change variant %T", p.Change)
	}
	if _, err := update.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("change source %s: %w", p.SourceID, err)
	}
	return Applied, nil
}
