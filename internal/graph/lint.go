package graph

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/ent/aid"
	"github.com/fourthplaces/rootsignal/ent/gathering"
	"github.com/fourthplaces/rootsignal/ent/need"
	"github.com/fourthplaces/rootsignal/ent/notice"
	"github.com/fourthplaces/rootsignal/ent/tension"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// applySignalPassed fans out by signal_type the same way applyEntityExpired
// does — Signal Lint (spec §4.6) verified this signal against its archived
// source and found nothing to fix, so it crosses staged -> live unchanged.
func (r *Reducer) applySignalPassed(ctx context.Context, seq int64, p *eventstore.SignalPassedPayload) (Result, error) {
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
			SetReviewStatus(gathering.ReviewStatusLive).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(aid.ReviewStatusLive).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(need.ReviewStatusLive).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(notice.ReviewStatusLive).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(tension.ReviewStatusLive).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("signal_passed: unknown signal_type %q", p.SignalType)
	}
}

// applySignalQuarantined fans out the same way, moving staged -> quarantined
// instead. A quarantined signal never reaches live and stays invisible to
// public queries (spec §4.6's safe-failure-mode guarantee).
func (r *Reducer) applySignalQuarantined(ctx context.Context, seq int64, p *eventstore.SignalQuarantinedPayload) (Result, error) {
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
			SetReviewStatus(gathering.ReviewStatusQuarantined).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(aid.ReviewStatusQuarantined).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(need.ReviewStatusQuarantined).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(notice.ReviewStatusQuarantined).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetReviewStatus(tension.ReviewStatusQuarantined).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("signal_quarantined: unknown signal_type %q", p.SignalType)
	}
}
