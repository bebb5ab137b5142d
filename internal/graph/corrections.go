package graph

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// applyGatheringCorrected rewrites exactly the field the correction names,
// never touching anything else on the row — a correction is a fact fix,
// not a refresh.
func (r *Reducer) applyGatheringCorrected(ctx context.Context, seq int64, p *eventstore.GatheringCorrectedPayload) (Result, error) {
	existing, err := r.client.Gathering.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "gathering", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}

	update := r.client.Gathering.UpdateOneID(p.SignalID).SetLastUpdatedSeq(seq)
	switch c := p.Correction.(type) {
	case eventstore.GatheringCorrectionTitle:
		update = update.SetTitle(c.New)
	case eventstore.GatheringCorrectionStartsAt:
		update = update.SetStartsAt(c.New)
	case eventstore.GatheringCorrectionEndsAt:
		if c.New == nil {
			update = update.ClearEndsAt()
		} else {
			update = update.SetEndsAt(*c.New)
		}
	case eventstore.GatheringCorrectionActionURL:
		update = update.SetActionURL(c.New)
	default:
		return NoOp, fmt.Errorf("gathering_corrected: unhandled correction variant %T", p.Correction)
	}

	if _, err := update.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("correct gathering %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyAidCorrected(ctx context.Context, seq int64, p *eventstore.AidCorrectedPayload) (Result, error) {
	existing, err := r.client.Aid.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "aid", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}

	update := r.client.Aid.UpdateOneID(p.SignalID).SetLastUpdatedSeq(seq)
	switch c := p.Correction.(type) {
	case eventstore.AidCorrectionTitle:
		update = update.SetTitle(c.New)
	case eventstore.AidCorrectionAvailability:
		update = update.SetAvailability(c.New)
	default:
		return NoOp, fmt.Errorf("aid_corrected: unhandled correction variant %T", p.Correction)
	}

	if _, err := update.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("correct aid %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyNeedCorrected(ctx context.Context, seq int64, p *eventstore.NeedCorrectedPayload) (Result, error) {
	existing, err := r.client.Need.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "need", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}

	update := r.client.Need.UpdateOneID(p.SignalID).SetLastUpdatedSeq(seq)
	switch c := p.Correction.(type) {
	case eventstore.NeedCorrectionTitle:
		update = update.SetTitle(c.New)
	case eventstore.NeedCorrectionWhatNeeded:
		update = update.SetWhatNeeded(c.New)
	default:
		return NoOp, fmt.Errorf("need_corrected: unhandled correction variant %T", p.Correction)
	}

	if _, err := update.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("correct need %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyNoticeCorrected(ctx context.Context, seq int64, p *eventstore.NoticeCorrectedPayload) (Result, error) {
	existing, err := r.client.Notice.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "notice", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}

	update := r.client.Notice.UpdateOneID(p.SignalID).SetLastUpdatedSeq(seq)
	switch c := p.Correction.(type) {
	case eventstore.NoticeCorrectionTitle:
		update = update.SetTitle(c.New)
	case eventstore.NoticeCorrectionEffectiveDate:
		if c.New == nil {
			update = update.ClearEffectiveDate()
		} else {
			update = update.SetEffectiveDate(*c.New)
		}
	default:
		return NoOp, fmt.Errorf("notice_corrected: unhandled correction variant %T", p.Correction)
	}

	if _, err := update.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("correct notice %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyTensionCorrected(ctx context.Context, seq int64, p *eventstore.TensionCorrectedPayload) (Result, error) {
	existing, err := r.client.Tension.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "tension", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}

	update := r.client.Tension.UpdateOneID(p.SignalID).SetLastUpdatedSeq(seq)
	switch c := p.Correction.(type) {
	case eventstore.TensionCorrectionTitle:
		update = update.SetTitle(c.New)
	case eventstore.TensionCorrectionWhatWouldHelp:
		update = update.SetWhatWouldHelp(c.New)
	default:
		return NoOp, fmt.Errorf("tension_corrected: unhandled correction variant %T", p.Correction)
	}

	if _, err := update.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("correct tension %s: %w", p.SignalID, err)
	}
	return Applied, nil
}
