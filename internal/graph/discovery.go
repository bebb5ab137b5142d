package graph

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/need"
	"github.com/fourthplaces/rootsignal/ent/notice"
	"github.com/fourthplaces/rootsignal/ent/schema"
	"github.com/fourthplaces/rootsignal/ent/tension"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// applyGatheringDiscovered MERGEs a gathering_discovered event: creates
// the Gathering if it doesn't exist yet, otherwise applies it only when
// seq is newer than the row's last_updated_seq. A signal is never
// recreated once staged — a second discovery event for the same id means
// a replay or a duplicate append, both handled by the guard.
func (r *Reducer) applyGatheringDiscovered(ctx context.Context, seq int64, p *eventstore.GatheringDiscoveredPayload) (Result, error) {
	existing, err := r.client.Gathering.Get(ctx, p.SignalID)
	if err == nil {
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		return NoOp, fmt.Errorf("gathering %s already discovered at seq %d, refusing to re-discover at seq %d", p.SignalID, existing.LastUpdatedSeq, seq)
	}
	if !ent.IsNotFound(err) {
		return NoOp, fmt.Errorf("get gathering %s: %w", p.SignalID, err)
	}

	create := r.client.Gathering.Create().
		SetID(p.SignalID).
		SetTitle(p.Title).
		SetSourceURL(p.SourceURL).
		SetExtractedAt(p.ExtractedAt).
		SetCreatedBy(p.CreatedBy).
		SetScoutRunID(p.ScoutRunID).
		SetProducedByID(p.SourceID).
		SetStartsAt(p.StartsAt).
		SetIsRecurring(p.IsRecurring).
		SetLastUpdatedSeq(seq)

	if p.Summary != "" {
		create = create.SetSummary(p.Summary)
	}
	if p.ContentDate != nil {
		create = create.SetContentDate(*p.ContentDate)
	}
	if p.AboutLat != nil {
		create = create.SetAboutLat(*p.AboutLat)
	}
	if p.AboutLng != nil {
		create = create.SetAboutLng(*p.AboutLng)
	}
	if p.AboutLocationName != "" {
		create = create.SetAboutLocationName(p.AboutLocationName)
	}
	if len(p.MentionedEntities) > 0 {
		create = create.SetMentionedEntities(convertMentionedEntities(p.MentionedEntities))
	}
	if p.EndsAt != nil {
		create = create.SetEndsAt(*p.EndsAt)
	}
	if p.Organizer != "" {
		create = create.SetOrganizer(p.Organizer)
	}
	if p.ActionURL != "" {
		create = create.SetActionURL(p.ActionURL)
	}

	if _, err := create.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("create gathering %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyAidDiscovered(ctx context.Context, seq int64, p *eventstore.AidDiscoveredPayload) (Result, error) {
	existing, err := r.client.Aid.Get(ctx, p.SignalID)
	if err == nil {
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		return NoOp, fmt.Errorf("aid %s already discovered at seq %d, refusing to re-discover at seq %d", p.SignalID, existing.LastUpdatedSeq, seq)
	}
	if !ent.IsNotFound(err) {
		return NoOp, fmt.Errorf("get aid %s: %w", p.SignalID, err)
	}

	create := r.client.Aid.Create().
		SetID(p.SignalID).
		SetTitle(p.Title).
		SetSourceURL(p.SourceURL).
		SetExtractedAt(p.ExtractedAt).
		SetCreatedBy(p.CreatedBy).
		SetScoutRunID(p.ScoutRunID).
		SetProducedByID(p.SourceID).
		SetIsOngoing(p.IsOngoing).
		SetLastUpdatedSeq(seq)

	if p.Summary != "" {
		create = create.SetSummary(p.Summary)
	}
	if p.ContentDate != nil {
		create = create.SetContentDate(*p.ContentDate)
	}
	if p.Availability != "" {
		create = create.SetAvailability(p.Availability)
	}
	if p.ActionURL != "" {
		create = create.SetActionURL(p.ActionURL)
	}
	if len(p.MentionedEntities) > 0 {
		create = create.SetMentionedEntities(convertMentionedEntities(p.MentionedEntities))
	}

	if _, err := create.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("create aid %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyNeedDiscovered(ctx context.Context, seq int64, p *eventstore.NeedDiscoveredPayload) (Result, error) {
	existing, err := r.client.Need.Get(ctx, p.SignalID)
	if err == nil {
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		return NoOp, fmt.Errorf("need %s already discovered at seq %d, refusing to re-discover at seq %d", p.SignalID, existing.LastUpdatedSeq, seq)
	}
	if !ent.IsNotFound(err) {
		return NoOp, fmt.Errorf("get need %s: %w", p.SignalID, err)
	}

	create := r.client.Need.Create().
		SetID(p.SignalID).
		SetTitle(p.Title).
		SetSourceURL(p.SourceURL).
		SetExtractedAt(p.ExtractedAt).
		SetCreatedBy(p.CreatedBy).
		SetScoutRunID(p.ScoutRunID).
		SetProducedByID(p.SourceID).
		SetLastUpdatedSeq(seq)

	if p.Summary != "" {
		create = create.SetSummary(p.Summary)
	}
	if p.Urgency != "" {
		create = create.SetUrgency(need.Urgency(p.Urgency))
	}
	if p.WhatNeeded != "" {
		create = create.SetWhatNeeded(p.WhatNeeded)
	}
	if p.Goal != "" {
		create = create.SetGoal(p.Goal)
	}
	if len(p.MentionedEntities) > 0 {
		create = create.SetMentionedEntities(convertMentionedEntities(p.MentionedEntities))
	}

	if _, err := create.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("create need %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyNoticeDiscovered(ctx context.Context, seq int64, p *eventstore.NoticeDiscoveredPayload) (Result, error) {
	existing, err := r.client.Notice.Get(ctx, p.SignalID)
	if err == nil {
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		return NoOp, fmt.Errorf("notice %s already discovered at seq %d, refusing to re-discover at seq %d", p.SignalID, existing.LastUpdatedSeq, seq)
	}
	if !ent.IsNotFound(err) {
		return NoOp, fmt.Errorf("get notice %s: %w", p.SignalID, err)
	}

	create := r.client.Notice.Create().
		SetID(p.SignalID).
		SetTitle(p.Title).
		SetSourceURL(p.SourceURL).
		SetExtractedAt(p.ExtractedAt).
		SetCreatedBy(p.CreatedBy).
		SetScoutRunID(p.ScoutRunID).
		SetProducedByID(p.SourceID).
		SetLastUpdatedSeq(seq)

	if p.Summary != "" {
		create = create.SetSummary(p.Summary)
	}
	if p.Severity != "" {
		create = create.SetSeverity(notice.Severity(p.Severity))
	}
	if p.Category != "" {
		create = create.SetCategory(p.Category)
	}
	if p.EffectiveDate != nil {
		create = create.SetEffectiveDate(*p.EffectiveDate)
	}
	if p.SourceAuthority != "" {
		create = create.SetSourceAuthority(p.SourceAuthority)
	}
	if len(p.MentionedEntities) > 0 {
		create = create.SetMentionedEntities(convertMentionedEntities(p.MentionedEntities))
	}

	if _, err := create.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("create notice %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

func (r *Reducer) applyTensionDiscovered(ctx context.Context, seq int64, p *eventstore.TensionDiscoveredPayload) (Result, error) {
	existing, err := r.client.Tension.Get(ctx, p.SignalID)
	if err == nil {
		if existing.LastUpdatedSeq >= seq {
			return NoOp, nil
		}
		return NoOp, fmt.Errorf("tension %s already discovered at seq %d, refusing to re-discover at seq %d", p.SignalID, existing.LastUpdatedSeq, seq)
	}
	if !ent.IsNotFound(err) {
		return NoOp, fmt.Errorf("get tension %s: %w", p.SignalID, err)
	}

	create := r.client.Tension.Create().
		SetID(p.SignalID).
		SetTitle(p.Title).
		SetSourceURL(p.SourceURL).
		SetExtractedAt(p.ExtractedAt).
		SetCreatedBy(p.CreatedBy).
		SetScoutRunID(p.ScoutRunID).
		SetProducedByID(p.SourceID).
		SetLastUpdatedSeq(seq)

	if p.Summary != "" {
		create = create.SetSummary(p.Summary)
	}
	if p.Severity != "" {
		create = create.SetSeverity(tension.Severity(p.Severity))
	}
	if p.WhatWouldHelp != "" {
		create = create.SetWhatWouldHelp(p.WhatWouldHelp)
	}
	if len(p.MentionedEntities) > 0 {
		create = create.SetMentionedEntities(convertMentionedEntities(p.MentionedEntities))
	}

	if _, err := create.Save(ctx); err != nil {
		return NoOp, fmt.Errorf("create tension %s: %w", p.SignalID, err)
	}
	return Applied, nil
}

// convertMentionedEntities adapts the event log's wire-format
// MentionedEntity (internal/eventstore, no ent dependency) to the ent
// schema's copy of the same shape.
func convertMentionedEntities(in []eventstore.MentionedEntity) []schema.MentionedEntity {
	out := make([]schema.MentionedEntity, len(in))
	for i, e := range in {
		out[i] = schema.MentionedEntity{Name: e.Name, EntityType: e.EntityType, Role: e.Role}
	}
	return out
}
