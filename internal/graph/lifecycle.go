package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// applyGatheringCancelled stamps retracted_at without moving review_status
// — a cancelled gathering that was already live stays queryable by id but
// drops out of public reads (internal/api filters on retracted_at IS NULL).
func (r *Reducer) applyGatheringCancelled(ctx context.Context, seq int64, ts time.Time, p *eventstore.GatheringCancelledPayload) (Result, error) {
	existing, err := r.client.Gathering.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "gathering", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}
	update := r.client.Gathering.UpdateOneID(p.SignalID).
		SetRetractedAt(ts).
		SetLastUpdatedSeq(seq)
	if p.Reason != "" {
		update = update.SetRetractedReason(p.Reason)
	}
	if _, err := update.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("cancel gathering %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyAnnouncementRetracted(ctx context.Context, seq int64, ts time.Time, p *eventstore.AnnouncementRetractedPayload) (Result, error) {
	existing, err := r.client.Notice.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "notice", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}
	_, err = r.client.Notice.UpdateOneID(p.SignalID).
		SetRetractedAt(ts).
		SetRetractedReason("source retracted announcement").
		SetLastUpdatedSeq(seq).
		Save(ctx)
	return applied(err)
}

// applyEntityExpired fans out by signal_type the same way
// applyConfidenceScored does — expiry is the one lifecycle event the
// scrape reaper fires against any of the five signal types.
func (r *Reducer) applyEntityExpired(ctx context.Context, seq int64, ts time.Time, p *eventstore.EntityExpiredPayload) (Result, error) {
	reason := p.Reason
	if reason == "" {
		reason = "expired"
	}
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
			SetRetractedAt(ts).SetRetractedReason(reason).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetRetractedAt(ts).SetRetractedReason(reason).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetRetractedAt(ts).SetRetractedReason(reason).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetRetractedAt(ts).SetRetractedReason(reason).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetRetractedAt(ts).SetRetractedReason(reason).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("entity_expired: unknown signal_type %q", p.SignalType)
	}
}
