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

func discoverGathering(id, sourceID, runID string) eventstore.AppendInput {
	return eventstore.AppendInput{
		EventType: eventstore.EventTypeGatheringDiscovered,
		RunID:     runID,
		Actor:     "scout.extractor",
		Payload: &eventstore.GatheringDiscoveredPayload{
			SignalCore: eventstore.SignalCore{
				SignalID:    id,
				Title:       "Block Party " + id,
				SourceURL:   "https://example.org/" + id,
				SourceID:    sourceID,
				ExtractedAt: time.Now().UTC(),
				CreatedBy:   "scout.extractor",
				ScoutRunID:  runID,
			},
			StartsAt: time.Now().Add(24 * time.Hour).UTC(),
		},
	}
}

func TestReplayFrom_AppliesEveryEventInOrder(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	r := NewReducer(client.Client, client.DB())
	store := eventstore.NewStore(client.DB())

	seedSource(t, ctx, r, "source-1")
	for _, id := range []string{"g1", "g2", "g3"} {
		_, err := store.Append(ctx, discoverGathering(id, "source-1", "run-1"))
		require.NoError(t, err)
	}

	reached, err := r.ReplayFrom(ctx, store, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), reached)

	for _, id := range []string{"g1", "g2", "g3"} {
		_, err := r.client.Gathering.Get(ctx, id)
		assert.NoError(t, err, "gathering %s should have been projected by replay", id)
	}
}

func TestReplayFrom_FromMidpointOnlyAppliesTheTail(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	r := NewReducer(client.Client, client.DB())
	store := eventstore.NewStore(client.DB())

	seedSource(t, ctx, r, "source-1")
	first, err := store.Append(ctx, discoverGathering("g1", "source-1", "run-1"))
	require.NoError(t, err)
	_, err = store.Append(ctx, discoverGathering("g2", "source-1", "run-1"))
	require.NoError(t, err)

	reached, err := r.ReplayFrom(ctx, store, first.Seq)
	require.NoError(t, err)
	assert.Equal(t, first.Seq+1, reached)

	_, err = r.client.Gathering.Get(ctx, "g1")
	assert.Error(t, err, "g1 was before the replay start and should not have been projected")
	_, err = r.client.Gathering.Get(ctx, "g2")
	assert.NoError(t, err)
}

func TestRebuild_WipesProjectionAndReplaysFromScratch(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	r := NewReducer(client.Client, client.DB())
	store := eventstore.NewStore(client.DB())

	seedSource(t, ctx, r, "source-1")
	ev, err := store.Append(ctx, discoverGathering("g1", "source-1", "run-1"))
	require.NoError(t, err)
	_, err = r.Apply(ctx, ev)
	require.NoError(t, err)
	_, err = r.client.Gathering.Get(ctx, "g1")
	require.NoError(t, err)

	require.NoError(t, r.Rebuild(ctx, store))

	g, err := r.client.Gathering.Get(ctx, "g1")
	require.NoError(t, err, "rebuild should have re-derived g1 from the log")
	assert.Equal(t, "Block Party g1", g.Title)
}

func TestCursor_LoadDefaultsToZeroAndAdvancePersists(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	r := NewReducer(client.Client, client.DB())
	c := NewCursor(r)

	seq, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, c.Advance(ctx, 42))
	seq, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
}

func TestRunCatchupLoop_ReplaysGapLeftByASkippedInlineApply(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewReducer(client.Client, client.DB())
	store := eventstore.NewStore(client.DB())
	cursor := NewCursor(r)

	seedSource(t, ctx, r, "source-1")
	// Simulate a writer whose inline Apply never ran (e.g. the process
	// crashed between Append and Apply) — the event is in the log but
	// the graph doesn't know about it yet, and the cursor is still at 0.
	_, err := store.Append(ctx, discoverGathering("g1", "source-1", "run-1"))
	require.NoError(t, err)

	loopCtx, loopCancel := context.WithTimeout(ctx, 2*time.Second)
	defer loopCancel()
	done := make(chan struct{})
	go func() {
		RunCatchupLoop(loopCtx, r, store, cursor, 50*time.Millisecond)
		close(done)
	}()
	<-done

	_, err = r.client.Gathering.Get(ctx, "g1")
	assert.NoError(t, err, "catch-up loop should have replayed the missed event")

	seq, err := cursor.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}
