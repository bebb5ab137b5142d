package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/aid"
	"github.com/fourthplaces/rootsignal/ent/gathering"
	"github.com/fourthplaces/rootsignal/ent/need"
	"github.com/fourthplaces/rootsignal/ent/notice"
	"github.com/fourthplaces/rootsignal/ent/tension"
)

// listSignalsHandler serves GET /api/v1/signals/:type — the five typed
// signal tables projected through a common shape, filtered to what the
// public graph considers visible: review_status=live and not retracted,
// the same pair applySignalPassed/applyEntityExpired (internal/graph)
// guard with RetractedAtIsNil/ReviewStatusEQ predicates.
func (s *Server) listSignalsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	signalType := c.Param("type")

	var (
		resp []SignalResponse
		err  error
	)
	switch signalType {
	case "gathering":
		resp, err = listGatherings(ctx, s.client)
	case "aid":
		resp, err = listAids(ctx, s.client)
	case "need":
		resp, err = listNeeds(ctx, s.client)
	case "notice":
		resp, err = listNotices(ctx, s.client)
	case "tension":
		resp, err = listTensions(ctx, s.client)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown signal type " + signalType})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": resp})
}

func locationOf(lat, lng *float64, name *string) *LocationResponse {
	if lat == nil || lng == nil {
		return nil
	}
	loc := &LocationResponse{Lat: *lat, Lng: *lng}
	if name != nil {
		loc.Name = *name
	}
	return loc
}

func listGatherings(ctx context.Context, client *ent.Client) ([]SignalResponse, error) {
	rows, err := client.Gathering.Query().
		Where(gathering.ReviewStatusEQ(gathering.ReviewStatusLive), gathering.RetractedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SignalResponse, 0, len(rows))
	for _, r := range rows {
		fields := map[string]any{"starts_at": r.StartsAt, "is_recurring": r.IsRecurring}
		if r.EndsAt != nil {
			fields["ends_at"] = *r.EndsAt
		}
		if r.Organizer != nil {
			fields["organizer"] = *r.Organizer
		}
		if r.ActionURL != nil {
			fields["action_url"] = *r.ActionURL
		}
		out = append(out, SignalResponse{
			ID: r.ID, Type: "gathering", Title: r.Title, Summary: r.Summary,
			Confidence: r.Confidence, Sensitivity: string(r.Sensitivity), SourceURL: r.SourceURL,
			ExtractedAt: r.ExtractedAt, ContentDate: r.ContentDate,
			Location: locationOf(r.AboutLat, r.AboutLng, r.AboutLocationName), Fields: fields,
		})
	}
	return out, nil
}

func listAids(ctx context.Context, client *ent.Client) ([]SignalResponse, error) {
	rows, err := client.Aid.Query().
		Where(aid.ReviewStatusEQ(aid.ReviewStatusLive), aid.RetractedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SignalResponse, 0, len(rows))
	for _, r := range rows {
		fields := map[string]any{"is_ongoing": r.IsOngoing}
		if r.Availability != nil {
			fields["availability"] = *r.Availability
		}
		if r.ActionURL != nil {
			fields["action_url"] = *r.ActionURL
		}
		out = append(out, SignalResponse{
			ID: r.ID, Type: "aid", Title: r.Title, Summary: r.Summary,
			Confidence: r.Confidence, Sensitivity: string(r.Sensitivity), SourceURL: r.SourceURL,
			ExtractedAt: r.ExtractedAt, ContentDate: r.ContentDate,
			Location: locationOf(r.AboutLat, r.AboutLng, r.AboutLocationName), Fields: fields,
		})
	}
	return out, nil
}

func listNeeds(ctx context.Context, client *ent.Client) ([]SignalResponse, error) {
	rows, err := client.Need.Query().
		Where(need.ReviewStatusEQ(need.ReviewStatusLive), need.RetractedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SignalResponse, 0, len(rows))
	for _, r := range rows {
		fields := map[string]any{}
		if r.Urgency != nil {
			fields["urgency"] = string(*r.Urgency)
		}
		if r.WhatNeeded != nil {
			fields["what_needed"] = *r.WhatNeeded
		}
		if r.Goal != nil {
			fields["goal"] = *r.Goal
		}
		out = append(out, SignalResponse{
			ID: r.ID, Type: "need", Title: r.Title, Summary: r.Summary,
			Confidence: r.Confidence, Sensitivity: string(r.Sensitivity), SourceURL: r.SourceURL,
			ExtractedAt: r.ExtractedAt, ContentDate: r.ContentDate,
			Location: locationOf(r.AboutLat, r.AboutLng, r.AboutLocationName), Fields: fields,
		})
	}
	return out, nil
}

func listNotices(ctx context.Context, client *ent.Client) ([]SignalResponse, error) {
	rows, err := client.Notice.Query().
		Where(notice.ReviewStatusEQ(notice.ReviewStatusLive), notice.RetractedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SignalResponse, 0, len(rows))
	for _, r := range rows {
		fields := map[string]any{}
		if r.Severity != nil {
			fields["severity"] = string(*r.Severity)
		}
		if r.Category != nil {
			fields["category"] = *r.Category
		}
		if r.EffectiveDate != nil {
			fields["effective_date"] = *r.EffectiveDate
		}
		if r.SourceAuthority != nil {
			fields["source_authority"] = *r.SourceAuthority
		}
		out = append(out, SignalResponse{
			ID: r.ID, Type: "notice", Title: r.Title, Summary: r.Summary,
			Confidence: r.Confidence, Sensitivity: string(r.Sensitivity), SourceURL: r.SourceURL,
			ExtractedAt: r.ExtractedAt, ContentDate: r.ContentDate,
			Location: locationOf(r.AboutLat, r.AboutLng, r.AboutLocationName), Fields: fields,
		})
	}
	return out, nil
}

func listTensions(ctx context.Context, client *ent.Client) ([]SignalResponse, error) {
	rows, err := client.Tension.Query().
		Where(tension.ReviewStatusEQ(tension.ReviewStatusLive), tension.RetractedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SignalResponse, 0, len(rows))
	for _, r := range rows {
		fields := map[string]any{"cause_heat": r.CauseHeat}
		if r.Severity != nil {
			fields["severity"] = string(*r.Severity)
		}
		if r.WhatWouldHelp != nil {
			fields["what_would_help"] = *r.WhatWouldHelp
		}
		out = append(out, SignalResponse{
			ID: r.ID, Type: "tension", Title: r.Title, Summary: r.Summary,
			Confidence: r.Confidence, Sensitivity: string(r.Sensitivity), SourceURL: r.SourceURL,
			ExtractedAt: r.ExtractedAt, ContentDate: r.ContentDate,
			Location: locationOf(r.AboutLat, r.AboutLng, r.AboutLocationName), Fields: fields,
		})
	}
	return out, nil
}

