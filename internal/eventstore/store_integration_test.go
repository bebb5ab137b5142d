package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/test/storagetest"
)

func TestStore_AppendAndReadFrom(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	store := NewStore(client.DB())
	ctx := context.Background()

	first, err := store.Append(ctx, AppendInput{
		EventType: EventTypeGatheringDiscovered,
		Payload: &GatheringDiscoveredPayload{
			SignalCore: SignalCore{
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
		RunID: "run-1",
		Actor: "scout.extractor",
	})
	require.NoError(t, err)
	assert.True(t, first.IsRoot())

	second, err := store.Append(ctx, AppendInput{
		EventType: EventTypeConfidenceScored,
		Payload: &ConfidenceScoredPayload{
			SignalType: "gathering",
			SignalID:   "gathering-1",
			Confidence: 0.82,
		},
		ParentSeq: &first.Seq,
		RunID:     "run-1",
		Actor:     "scout.synthesis",
	})
	require.NoError(t, err)
	require.NotNil(t, second.ParentSeq)
	assert.Equal(t, first.Seq, *second.ParentSeq)

	events, err := store.ReadFrom(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)

	gathering, ok := events[0].Payload.(*GatheringDiscoveredPayload)
	require.True(t, ok)
	assert.Equal(t, "gathering-1", gathering.SignalID)
	assert.Equal(t, "Block Party", gathering.Title)

	confidence, ok := events[1].Payload.(*ConfidenceScoredPayload)
	require.True(t, ok)
	assert.InDelta(t, 0.82, confidence.Confidence, 0.0001)
}

func TestStore_ReadFromIsGapFree(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	store := NewStore(client.DB())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Append(ctx, AppendInput{
			EventType: EventTypeURLScraped,
			Payload:   &URLScrapedPayload{URL: "https://example.org", StatusCode: 200},
			RunID:     "run-gapfree",
			Actor:     "scout.scrape",
		})
		require.NoError(t, err)
	}

	events, err := store.ReadFrom(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
}

func TestSubscribe_DeliversLiveAppends(t *testing.T) {
	client, cfg := storagetest.NewTestClient(t)
	store := NewStore(client.DB())
	listener := NewNotifyListener(storagetest.ConnString(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := Subscribe(ctx, store, listener, 0)
	require.NoError(t, err)
	defer listener.Stop(context.Background())

	_, err = store.Append(ctx, AppendInput{
		EventType: EventTypeURLScraped,
		Payload:   &URLScrapedPayload{URL: "https://example.org/live", StatusCode: 200},
		RunID:     "run-live",
		Actor:     "scout.scrape",
	})
	require.NoError(t, err)

	select {
	case ev := <-out:
		payload, ok := ev.Payload.(*URLScrapedPayload)
		require.True(t, ok)
		assert.Equal(t, "https://example.org/live", payload.URL)
	case <-ctx.Done():
		t.Fatal("timed out waiting for live-subscribed event")
	}
}
