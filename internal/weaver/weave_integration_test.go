package weaver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
	"github.com/fourthplaces/rootsignal/test/storagetest"
)

type fakeClusterer struct {
	verdict llmclient.ClusterVerdict
	err     error
	calls   int
}

func (f *fakeClusterer) Cluster(ctx context.Context, batch llmclient.ClusterBatch) (llmclient.ClusterVerdict, error) {
	f.calls++
	return f.verdict, f.err
}

const tensionUUID = "11111111-1111-1111-1111-111111111111"

func TestWeave_NewSituationAssignmentAndDispatchRoundTrip(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())
	j := durable.NewJournal(client.DB())

	sourceID := "source-weave-1"
	_, err := client.Source.Create().
		SetID(sourceID).
		SetCanonicalValue("https://example.org/weave").
		SetScrapingStrategy("web_page").
		Save(ctx)
	require.NoError(t, err)

	_, err = client.Tension.Create().
		SetID(tensionUUID).
		SetTitle("Road closure backlash").
		SetSourceURL("https://example.org/tension-1").
		SetSourceID(sourceID).
		SetExtractedAt(time.Now().UTC()).
		SetCreatedBy("scout.extractor").
		SetScoutRunID("run-weave-1").
		SetSeverity("moderate").
		Save(ctx)
	require.NoError(t, err)

	candidates := []CandidateSignal{
		{SignalType: "tension", SignalID: tensionUUID, Title: "Road closure backlash", Summary: "Residents upset", CauseHeat: 0.7, Embedding: []float32{1, 0, 0}},
	}

	clusterer := &fakeClusterer{
		verdict: llmclient.ClusterVerdict{
			NewSituations: []llmclient.NewSituationSpec{
				{TempID: "tmp-1", Headline: "Downtown road closure dispute", Lede: "A contested closure is drawing sustained pushback."},
			},
			Assignments: []llmclient.SignalAssignment{
				{SignalID: tensionUUID, NewSituationID: "tmp-1"},
			},
			Dispatches: []llmclient.DispatchSpec{
				{SituationID: "tmp-1", DispatchType: "emergence", Body: "Residents are pushing back on [signal:" + tensionUUID + "].", CitedSignals: []string{tensionUUID}},
			},
		},
	}

	result, err := Weave(ctx, j, client.Client, store, clusterer, nil, "run-weave-1", "testregion", candidates, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, clusterer.calls)
	assert.Equal(t, 1, result.SituationsCreated)
	assert.Equal(t, 1, result.DispatchesWritten)
	assert.Equal(t, 0, result.DispatchesFlagged)

	situations, err := client.Situation.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, situations, 1)
	assert.Equal(t, "Downtown road closure dispute", situations[0].Headline)

	evidence, err := client.TensionEvidence.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, evidence, 1)

	dispatches, err := client.Dispatch.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, dispatches, 1)
	assert.False(t, dispatches[0].FlaggedForReview)
}

func TestWeave_DispatchWithNoCitationsIsFlagged(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())
	j := durable.NewJournal(client.DB())

	sourceID := "source-weave-2"
	_, err := client.Source.Create().
		SetID(sourceID).
		SetCanonicalValue("https://example.org/weave2").
		SetScrapingStrategy("web_page").
		Save(ctx)
	require.NoError(t, err)

	situationID := "situation-existing-1"
	_, err = client.Situation.Create().SetID(situationID).SetHeadline("Existing situation").Save(ctx)
	require.NoError(t, err)

	clusterer := &fakeClusterer{
		verdict: llmclient.ClusterVerdict{
			Dispatches: []llmclient.DispatchSpec{
				{SituationID: situationID, DispatchType: "update", Body: "Unverified claim with no grounding.", CitedSignals: nil},
			},
		},
	}

	result, err := Weave(ctx, j, client.Client, store, clusterer, nil, "run-weave-2", "testregion", []CandidateSignal{{SignalType: "tension", SignalID: tensionUUID}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DispatchesFlagged)

	dispatches, err := client.Dispatch.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, dispatches, 1)
	assert.True(t, dispatches[0].FlaggedForReview)
	assert.NotEmpty(t, dispatches[0].FlagReason)
}

func TestWeave_NoCandidatesSkipsClusterCall(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := eventstore.NewStore(client.DB())
	j := durable.NewJournal(client.DB())

	clusterer := &fakeClusterer{}
	result, err := Weave(ctx, j, client.Client, store, clusterer, nil, "run-weave-3", "testregion", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, clusterer.calls)
	assert.Equal(t, WeaveResult{}, result)
}
