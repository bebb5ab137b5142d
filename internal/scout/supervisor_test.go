package scout

import (
	"context"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/graph"
	"github.com/fourthplaces/rootsignal/internal/graph/enrichment"
	"github.com/fourthplaces/rootsignal/test/storagetest"
)

// replayAll drains every event store.Append appended and projects it
// through the reducer — the same catch-up path internal/lint's and
// internal/graph's own integration tests exercise.
func replayAll(t *testing.T, ctx context.Context, store *eventstore.Store, r *graph.Reducer) {
	t.Helper()
	events, err := store.ReadFrom(ctx, 0, 1000)
	require.NoError(t, err)
	for _, ev := range events {
		_, err := r.Apply(ctx, ev)
		require.NoError(t, err)
	}
}

func seedSourceForSupervisor(t *testing.T, ctx context.Context, client *ent.Client, id string) {
	t.Helper()
	_, err := client.Source.Create().
		SetID(id).
		SetCanonicalValue("https://example.org/" + id).
		SetScrapingStrategy("web_page").
		Save(ctx)
	require.NoError(t, err)
}

func seedGatheringDirect(t *testing.T, ctx context.Context, client *ent.Client, sourceID, id string, startsAt time.Time) {
	t.Helper()
	_, err := client.Gathering.Create().
		SetID(id).
		SetTitle("Block Party").
		SetSourceURL("https://example.org/" + id).
		SetExtractedAt(startsAt).
		SetCreatedBy("scout.extractor").
		SetScoutRunID("run-supervisor-1").
		SetStartsAt(startsAt.Add(time.Hour)).
		SetReviewStatus("live").
		SetProducedByID(sourceID).
		Save(ctx)
	require.NoError(t, err)
}

func TestAutoFixSignals_NullsOutEndsAtBeforeStartsAt(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())
	r := graph.NewReducer(client.Client, client.DB())

	sourceID := "source-autofix"
	seedSourceForSupervisor(t, ctx, client.Client, sourceID)

	starts := time.Now().Add(24 * time.Hour).UTC()
	badEnds := starts.Add(-time.Hour)
	gatheringID := "gathering-autofix"
	_, err := client.Gathering.Create().
		SetID(gatheringID).
		SetTitle("Misparsed Event").
		SetSourceURL("https://example.org/" + gatheringID).
		SetExtractedAt(time.Now().UTC()).
		SetCreatedBy("scout.extractor").
		SetScoutRunID("run-supervisor-1").
		SetStartsAt(starts).
		SetEndsAt(badEnds).
		SetReviewStatus("live").
		SetProducedByID(sourceID).
		Save(ctx)
	require.NoError(t, err)

	fixed, err := autoFixSignals(ctx, client.Client, store, "run-supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	replayAll(t, ctx, store, r)

	g, err := client.Gathering.Get(ctx, gatheringID)
	require.NoError(t, err)
	assert.Nil(t, g.EndsAt)
}

func TestPenalizeStaleSources_DecaysWeightAndDeactivatesBelowFloor(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())
	r := graph.NewReducer(client.Client, client.DB())

	sourceID := "source-stale"
	_, err := client.Source.Create().
		SetID(sourceID).
		SetCanonicalValue("https://example.org/stale").
		SetScrapingStrategy("web_page").
		SetWeight(0.1).
		SetConsecutiveEmptyRuns(SourcePenaltyEmptyRunThreshold + 1).
		Save(ctx)
	require.NoError(t, err)

	penalized, err := penalizeStaleSources(ctx, client.Client, store, "run-supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, penalized)

	replayAll(t, ctx, store, r)

	s, err := client.Source.Get(ctx, sourceID)
	require.NoError(t, err)
	assert.InDelta(t, 0.1*SourcePenaltyDecay, s.Weight, 1e-9)
	assert.False(t, s.Active, "weight fell below the floor, source should deactivate")
}

func TestMergeDuplicates_RetractsTheNewerOfAnIdenticalPair(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())
	r := graph.NewReducer(client.Client, client.DB())
	enricher := enrichment.NewEnricher(client.DB(), nil, nil, 1)

	sourceID := "source-dup"
	seedSourceForSupervisor(t, ctx, client.Client, sourceID)

	older := time.Now().Add(-2 * time.Hour).UTC()
	newer := time.Now().Add(-time.Hour).UTC()
	seedGatheringDirect(t, ctx, client.Client, sourceID, "gathering-dup-old", older)
	seedGatheringDirect(t, ctx, client.Client, sourceID, "gathering-dup-new", newer)

	vec := []float32{1, 0, 0, 0}
	for _, id := range []string{"gathering-dup-old", "gathering-dup-new"} {
		_, err := client.DB().ExecContext(ctx,
			`UPDATE gatherings SET embedding = $1, embedding_model_v = $2, source_diversity = 1 WHERE signal_id = $3`,
			pgvector.NewVector(vec), 1, id,
		)
		require.NoError(t, err)
	}

	n, err := enricher.RunCauseHeatPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	merged, err := mergeDuplicates(ctx, client.Client, client.DB(), store, "run-supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, merged)

	replayAll(t, ctx, store, r)

	newRow, err := client.Gathering.Get(ctx, "gathering-dup-new")
	require.NoError(t, err)
	require.NotNil(t, newRow.RetractedAt)
	assert.Contains(t, *newRow.RetractedReason, "duplicate_of:gathering-dup-old")

	oldRow, err := client.Gathering.Get(ctx, "gathering-dup-old")
	require.NoError(t, err)
	assert.Nil(t, oldRow.RetractedAt)
}

func seedEvidence(t *testing.T, ctx context.Context, client *ent.Client, id, excerpt string) *ent.Evidence {
	t.Helper()
	ev, err := client.Evidence.Create().
		SetID(id).
		SetArchiveRef("archive://" + id).
		SetExcerpt(excerpt).
		SetCapturedAt(time.Now().UTC()).
		Save(ctx)
	require.NoError(t, err)
	return ev
}

func TestDetectEchoes_CapsDiversityWhenExcerptsAreIdentical(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()

	sourceID := "source-echo"
	seedSourceForSupervisor(t, ctx, client.Client, sourceID)
	gatheringID := "gathering-echo"
	seedGatheringDirect(t, ctx, client.Client, sourceID, gatheringID, time.Now().UTC())

	_, err := client.DB().ExecContext(ctx,
		`UPDATE gatherings SET source_diversity = 3 WHERE signal_id = $1`, gatheringID)
	require.NoError(t, err)

	evA := seedEvidence(t, ctx, client.Client, "evidence-echo-a", "City council meets tonight to discuss curfew.")
	evB := seedEvidence(t, ctx, client.Client, "evidence-echo-b", "  city   council meets TONIGHT to discuss curfew. ")

	g, err := client.Gathering.Get(ctx, gatheringID)
	require.NoError(t, err)
	_, err = g.Update().AddSourcedFrom(evA, evB).Save(ctx)
	require.NoError(t, err)

	flagged, err := detectEchoes(ctx, client.DB())
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	g, err = client.Gathering.Get(ctx, gatheringID)
	require.NoError(t, err)
	assert.Equal(t, 1, g.SourceDiversity)
}

func TestDetectEchoes_LeavesDistinctExcerptsAlone(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()

	sourceID := "source-echo-2"
	seedSourceForSupervisor(t, ctx, client.Client, sourceID)
	gatheringID := "gathering-echo-2"
	seedGatheringDirect(t, ctx, client.Client, sourceID, gatheringID, time.Now().UTC())
	_, err := client.DB().ExecContext(ctx,
		`UPDATE gatherings SET source_diversity = 2 WHERE signal_id = $1`, gatheringID)
	require.NoError(t, err)

	evA := seedEvidence(t, ctx, client.Client, "evidence-distinct-a", "Neighbors organize a block party for Saturday.")
	evB := seedEvidence(t, ctx, client.Client, "evidence-distinct-b", "Local association confirms a weekend gathering.")

	g, err := client.Gathering.Get(ctx, gatheringID)
	require.NoError(t, err)
	_, err = g.Update().AddSourcedFrom(evA, evB).Save(ctx)
	require.NoError(t, err)

	flagged, err := detectEchoes(ctx, client.DB())
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)

	g, err = client.Gathering.Get(ctx, gatheringID)
	require.NoError(t, err)
	assert.Equal(t, 2, g.SourceDiversity)
}

func TestDetectBeacons_FlagsRegularCadenceAndCutsWeight(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())
	r := graph.NewReducer(client.Client, client.DB())

	sourceID := "source-beacon"
	_, err := client.Source.Create().
		SetID(sourceID).
		SetCanonicalValue("https://example.org/beacon").
		SetScrapingStrategy("web_page").
		SetWeight(1.0).
		SetOwned(true).
		Save(ctx)
	require.NoError(t, err)

	base := time.Now().Add(-24 * time.Hour).UTC()
	for i := 0; i < BeaconMinSamples+1; i++ {
		id := "gathering-beacon-" + string(rune('a'+i))
		seedGatheringDirect(t, ctx, client.Client, sourceID, id, base.Add(time.Duration(i)*time.Hour))
	}

	flagged, err := detectBeacons(ctx, client.Client, store, "run-supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	replayAll(t, ctx, store, r)

	s, err := client.Source.Get(ctx, sourceID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0*BeaconWeightPenalty, s.Weight, 1e-9)
}

func TestDetectBeacons_IgnoresIrregularCadence(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())

	sourceID := "source-organic"
	_, err := client.Source.Create().
		SetID(sourceID).
		SetCanonicalValue("https://example.org/organic").
		SetScrapingStrategy("web_page").
		SetWeight(1.0).
		SetOwned(true).
		Save(ctx)
	require.NoError(t, err)

	base := time.Now().Add(-48 * time.Hour).UTC()
	offsetsHours := []int{0, 3, 4, 19, 20, 44}
	for i, h := range offsetsHours {
		id := "gathering-organic-" + string(rune('a'+i))
		seedGatheringDirect(t, ctx, client.Client, sourceID, id, base.Add(time.Duration(h)*time.Hour))
	}

	flagged, err := detectBeacons(ctx, client.Client, store, "run-supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)

	s, err := client.Source.Get(ctx, sourceID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Weight)
}

func TestLooksLikeBeacon_TooFewSamples(t *testing.T) {
	now := time.Now()
	times := make([]time.Time, BeaconMinSamples-1)
	for i := range times {
		times[i] = now.Add(time.Duration(i) * time.Hour)
	}
	assert.False(t, looksLikeBeacon(times))
}
