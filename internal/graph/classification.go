package graph

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/aid"
	"github.com/fourthplaces/rootsignal/ent/gathering"
	"github.com/fourthplaces/rootsignal/ent/need"
	"github.com/fourthplaces/rootsignal/ent/notice"
	"github.com/fourthplaces/rootsignal/ent/tension"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// applyConfidenceScored writes system-computed confidence onto whichever
// signal table signal_type names. Confidence is the only field every one
// of the five signal types carries that classification ever touches
// uniformly, so this is the one apply* that fans out by signal_type
// rather than by Go payload type.
func (r *Reducer) applyConfidenceScored(ctx context.Context, seq int64, p *eventstore.ConfidenceScoredPayload) (Result, error) {
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
			SetConfidence(p.Confidence).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetConfidence(p.Confidence).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetConfidence(p.Confidence).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetConfidence(p.Confidence).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetConfidence(p.Confidence).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("confidence_scored: unknown signal_type %q", p.SignalType)
	}
}

// applySeverityClassified writes severity onto Notice or Tension, the two
// signal types that carry it.
func (r *Reducer) applySeverityClassified(ctx context.Context, seq int64, p *eventstore.SeverityClassifiedPayload) (Result, error) {
	switch p.SignalType {
	case "notice":
		existing, err := r.client.Notice.Get(ctx, p.SignalID)
		if err != nil {
			return NoOp, guardedGetErr(err, "notice", p.SignalID)
		}
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		_, err = r.client.Notice.UpdateOneID(p.SignalID).
			SetSeverity(notice.Severity(p.Severity)).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetSeverity(tension.Severity(p.Severity)).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("severity_classified: signal_type %q does not carry severity", p.SignalType)
	}
}

// applyUrgencyClassified writes urgency onto Need, the only signal type
// that carries it.
func (r *Reducer) applyUrgencyClassified(ctx context.Context, seq int64, p *eventstore.UrgencyClassifiedPayload) (Result, error) {
	existing, err := r.client.Need.Get(ctx, p.SignalID)
	if err != nil {
		return NoOp, guardedGetErr(err, "need", p.SignalID)
	}
	if existing.LastUpdatedSeq >= seq {
		return NoOp, nil
	}
	_, err = r.client.Need.UpdateOneID(p.SignalID).
		SetUrgency(need.Urgency(p.Urgency)).SetLastUpdatedSeq(seq).Save(ctx)
	return applied(err)
}

// applySensitivityClassified writes sensitivity onto whichever signal
// table signal_type names — every signal carries sensitivity.
func (r *Reducer) applySensitivityClassified(ctx context.Context, seq int64, p *eventstore.SensitivityClassifiedPayload) (Result, error) {
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
			SetSensitivity(gathering.Sensitivity(p.Sensitivity)).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetSensitivity(aid.Sensitivity(p.Sensitivity)).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetSensitivity(need.Sensitivity(p.Sensitivity)).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetSensitivity(notice.Sensitivity(p.Sensitivity)).SetLastUpdatedSeq(seq).Save(ctx)
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
			SetSensitivity(tension.Sensitivity(p.Sensitivity)).SetLastUpdatedSeq(seq).Save(ctx)
		return applied(err)
	default:
		return NoOp, fmt.Errorf("sensitivity_classified: unknown signal_type %q", p.SignalType)
	}
}

// guardedGetErr turns a not-found Get into a descriptive error — every
// classification event targets a signal that a discovery event must have
// already created, so a miss here means the log was replayed out of order.
func guardedGetErr(err error, signalType, id string) error {
	if ent.IsNotFound(err) {
		return fmt.Errorf("%s %s not found: classification event replayed before its discovery event", signalType, id)
	}
	return fmt.Errorf("get %s %s: %w", signalType, id, err)
}

// applied turns a Save error into the (Result, error) shape every apply*
// method returns.
func applied(err error) (Result, error) {
	if err != nil {
		return NoOp, err
	}
	return Applied, nil
}
