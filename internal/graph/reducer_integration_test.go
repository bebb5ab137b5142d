package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/test/storagetest"
)

func seedSource(t *testing.T, ctx context.Context, r *Reducer, id string) {
	t.Helper()
	_, err := r.client.Source.Create().
		SetID(id).
		SetCanonicalValue("https://example.org/" + id).
		SetScrapingStrategy("web_page").
		Save(ctx)
	require.NoError(t, err)
}

func TestReducer_GatheringDiscoveredIsIdempotentOnReplay(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	r := NewReducer(client.Client, client.DB())
	ctx := context.Background()
	seedSource(t, ctx, r, "source-1")

	ev := eventstore.Event{
		Seq:       1,
		TS:        time.Now().UTC(),
		EventType: eventstore.EventTypeGatheringDiscovered,
		Payload: &eventstore.GatheringDiscoveredPayload{
			SignalCore: eventstore.SignalCore{
				SignalID:    "gathering-1",
				Title:       "Block Party",
				SourceURL:   "https://example.org/block-party",
				SourceID:    "source-1",
				ExtractedAt: time.Now().UTC(),
				CreatedBy:   "scout.extractor",
				ScoutRunID:  "run-1",
			},
			StartsAt: time.Now().Add(24 * time.Hour).UTC(),
		},
	}

	res, err := r.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Applied, res)

	g, err := r.client.Gathering.Get(ctx, "gathering-1")
	require.NoError(t, err)
	assert.Equal(t, "Block Party", g.Title)
	assert.Equal(t, int64(1), g.LastUpdatedSeq)

	_, err = r.Apply(ctx, ev)
	assert.Error(t, err, "re-discovering the same signal id should not be silently accepted")
}

func TestReducer_ConfidenceScoredGuardsOnLastUpdatedSeq(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	r := NewReducer(client.Client, client.DB())
	ctx := context.Background()
	seedSource(t, ctx, r, "source-1")

	discover := eventstore.Event{
		Seq:       1,
		EventType: eventstore.EventTypeGatheringDiscovered,
		Payload: &eventstore.GatheringDiscoveredPayload{
			SignalCore: eventstore.SignalCore{
				SignalID:    "gathering-1",
				Title:       "Block Party",
				SourceURL:   "https://example.org/block-party",
				SourceID:    "source-1",
				ExtractedAt: time.Now().UTC(),
				CreatedBy:   "scout.extractor",
				ScoutRunID:  "run-1",
			},
			StartsAt: time.Now().Add(24 * time.Hour).UTC(),
		},
	}
	_, err := r.Apply(ctx, discover)
	require.NoError(t, err)

	score := eventstore.Event{
		Seq:       5,
		EventType: eventstore.EventTypeConfidenceScored,
		Payload: &eventstore.ConfidenceScoredPayload{
			SignalType: "gathering",
			SignalID:   "gathering-1",
			Confidence: 0.9,
		},
	}
	res, err := r.Apply(ctx, score)
	require.NoError(t, err)
	assert.Equal(t, Applied, res)

	stale := eventstore.Event{
		Seq:       3,
		EventType: eventstore.EventTypeConfidenceScored,
		Payload: &eventstore.ConfidenceScoredPayload{
			SignalType: "gathering",
			SignalID:   "gathering-1",
			Confidence: 0.1,
		},
	}
	res, err = r.Apply(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, NoOp, res)

	g, err := r.client.Gathering.Get(ctx, "gathering-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, g.Confidence, 0.0001, "a lower-seq event must never regress a higher-seq write")
}

func TestReducer_GatheringCorrectedRewritesOnlyNamedField(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	r := NewReducer(client.Client, client.DB())
	ctx := context.Background()
	seedSource(t, ctx, r, "source-1")

	_, err := r.Apply(ctx, eventstore.Event{
		Seq:       1,
		EventType: eventstore.EventTypeGatheringDiscovered,
		Payload: &eventstore.GatheringDiscoveredPayload{
			SignalCore: eventstore.SignalCore{
				SignalID:    "gathering-1",
				Title:       "Block Party",
				SourceURL:   "https://example.org/block-party",
				SourceID:    "source-1",
				ExtractedAt: time.Now().UTC(),
				CreatedBy:   "scout.extractor",
				ScoutRunID:  "run-1",
			},
			StartsAt: time.Now().Add(24 * time.Hour).UTC(),
		},
	})
	require.NoError(t, err)

	res, err := r.Apply(ctx, eventstore.Event{
		Seq:       2,
		EventType: eventstore.EventTypeGatheringCorrected,
		Payload: &eventstore.GatheringCorrectedPayload{
			SignalID:   "gathering-1",
			Correction: eventstore.GatheringCorrectionTitle{Old: "Block Party", New: "Neighborhood Block Party"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Applied, res)

	g, err := r.client.Gathering.Get(ctx, "gathering-1")
	require.NoError(t, err)
	assert.Equal(t, "Neighborhood Block Party", g.Title)
}

func TestReducer_EntityExpiredStampsRetractionAcrossSignalTypes(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	r := NewReducer(client.Client, client.DB())
	ctx := context.Background()
	seedSource(t, ctx, r, "source-1")

	_, err := r.Apply(ctx, eventstore.Event{
		Seq:       1,
		EventType: eventstore.EventTypeAidDiscovered,
		Payload: &eventstore.AidDiscoveredPayload{
			SignalCore: eventstore.SignalCore{
				SignalID:    "aid-1",
				Title:       "Free meal program",
				SourceURL:   "https://example.org/meals",
				SourceID:    "source-1",
				ExtractedAt: time.Now().UTC(),
				CreatedBy:   "scout.extractor",
				ScoutRunID:  "run-1",
			},
		},
	})
	require.NoError(t, err)

	ts := time.Now().UTC()
	res, err := r.Apply(ctx, eventstore.Event{
		Seq:       2,
		TS:        ts,
		EventType: eventstore.EventTypeEntityExpired,
		Payload: &eventstore.EntityExpiredPayload{
			SignalType: "aid",
			SignalID:   "aid-1",
			Reason:     "past availability window",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Applied, res)

	a, err := r.client.Aid.Get(ctx, "aid-1")
	require.NoError(t, err)
	require.NotNil(t, a.RetractedAt)
	assert.WithinDuration(t, ts, *a.RetractedAt, time.Second)
	require.NotNil(t, a.RetractedReason)
	assert.Equal(t, "past availability window", *a.RetractedReason)
}

func TestReducer_ObservabilityEventsAreNoOps(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	r := NewReducer(client.Client, client.DB())
	ctx := context.Background()

	res, err := r.Apply(ctx, eventstore.Event{
		Seq:       1,
		EventType: eventstore.EventTypeURLScraped,
		Payload:   &eventstore.URLScrapedPayload{URL: "https://example.org", StatusCode: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, NoOp, res)
}
