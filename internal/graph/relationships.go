package graph

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// applyCitationRecorded ensures the Evidence node exists (get-or-create,
// never overwritten once captured) and adds the SOURCED_FROM edge from
// whichever signal table signal_type names.
func (r *Reducer) applyCitationRecorded(ctx context.Context, seq int64, p *eventstore.CitationRecordedPayload) (Result, error) {
	if _, err := r.client.Evidence.Get(ctx, p.EvidenceID); err != nil {
		if !ent.IsNotFound(err) {
			return NoOp, fmt.Errorf("get evidence %s: %w", p.EvidenceID, err)
		}
		if _, err := r.client.Evidence.Create().
			SetID(p.EvidenceID).
			SetArchiveRef(p.ArchiveRef).
			Save(ctx); err != nil && !ent.IsConstraintError(err) {
			return NoOp, fmt.Errorf("create evidence %s: %w", p.EvidenceID, err)
		}
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
			AddSourcedFromIDs(p.EvidenceID).SetLastUpdatedSeq(seq).Save(ctx)
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
			AddSourcedFromIDs(p.EvidenceID).SetLastUpdatedSeq(seq).Save(ctx)
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
			AddSourcedFromIDs(p.EvidenceID).SetLastUpdatedSeq(seq).Save(ctx)
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
			AddSourcedFromIDs(p.EvidenceID).SetLastUpdatedSeq(seq).Save(ctx)
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
			AddSourcedFromIDs(p.EvidenceID).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("citation_recorded: unknown signal_type %q", p.SignalType)
	}
}

// applyActorLinkedToSignal adds the ACTED_IN edge and records its role in
// signal_edge_facts (see DESIGN.md's edge-property decision — a per-type
// join schema for one rarely-queried property isn't worth five-way
// duplication). Not seq-guarded: ACTED_IN has no node-local
// last_updated_seq to compare against, and a duplicate link is an
// idempotent no-op at the database level (ON CONFLICT DO UPDATE).
func (r *Reducer) applyActorLinkedToSignal(ctx context.Context, p *eventstore.ActorLinkedToSignalPayload) (Result, error) {
	switch p.SignalType {
	case "gathering":
		if _, err := r.client.Gathering.UpdateOneID(p.SignalID).AddActedInIDs(p.ActorID).Save(ctx); err != nil {
			return NoOp, fmt.Errorf("link actor to gathering %s: %w", p.SignalID, err)
		}
	case "aid":
		if _, err := r.client.Aid.UpdateOneID(p.SignalID).AddActedInIDs(p.ActorID).Save(ctx); err != nil {
			return NoOp, fmt.Errorf("link actor to aid %s: %w", p.SignalID, err)
		}
	case "need":
		if _, err := r.client.Need.UpdateOneID(p.SignalID).AddActedInIDs(p.ActorID).Save(ctx); err != nil {
			return NoOp, fmt.Errorf("link actor to need %s: %w", p.SignalID, err)
		}
	case "notice":
		if _, err := r.client.Notice.UpdateOneID(p.SignalID).AddActedInIDs(p.ActorID).Save(ctx); err != nil {
			return NoOp, fmt.Errorf("link actor to notice %s: %w", p.SignalID, err)
		}
	case "tension":
		if _, err := r.client.Tension.UpdateOneID(p.SignalID).AddActedInIDs(p.ActorID).Save(ctx); err != nil {
			return NoOp, fmt.Errorf("link actor to tension %s: %w", p.SignalID, err)
		}
	default:
		return NoOp, fmt.Errorf("actor_linked_to_signal: unknown signal_type %q", p.SignalType)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO signal_edge_facts (signal_type, signal_id, edge_type, target_id, role)
		VALUES ($1, $2, 'acted_in', $3, $4)
		ON CONFLICT (signal_type, signal_id, edge_type, target_id)
		DO UPDATE SET role = EXCLUDED.role
	`, p.SignalType, p.SignalID, p.ActorID, p.Role)
	if err != nil {
		return NoOp, fmt.Errorf("record acted_in role for %s %s: %w", p.SignalType, p.SignalID, err)
	}
	return Applied, nil
}

// applyActorLinkedToSource sets Actor.has_source — Unique+Required, so a
// second link for the same actor simply repoints the edge rather than
// accumulating duplicates.
func (r *Reducer) applyActorLinkedToSource(ctx context.Context, p *eventstore.ActorLinkedToSourcePayload) (Result, error) {
	if _, err := r.client.Actor.UpdateOneID(p.ActorID).SetHasSourceID(p.SourceID).Save(ctx); err != nil {
		return NoOp, fmt.Errorf("link actor %s to source %s: %w", p.ActorID, p.SourceID, err)
	}
	return Applied, nil
}
