package eventstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/test/storagetest"
)

func TestHandle_ChainsParentSeq(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	store := NewStore(client.DB())
	ctx := context.Background()

	h := NewHandle(store, "run-chain", "scout.fullrun")

	first, err := h.Append(ctx, EventTypeURLScraped, &URLScrapedPayload{URL: "https://example.org/a", StatusCode: 200})
	require.NoError(t, err)
	assert.True(t, first.IsRoot())

	second, err := h.Append(ctx, EventTypeURLScraped, &URLScrapedPayload{URL: "https://example.org/b", StatusCode: 200})
	require.NoError(t, err)
	require.NotNil(t, second.ParentSeq)
	assert.Equal(t, first.Seq, *second.ParentSeq)
	assert.Nil(t, second.CausedBySeq)
}

func TestHandle_Caused_SetsCausedBySeqOnFirstAppendOnly(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	store := NewStore(client.DB())
	ctx := context.Background()

	root := NewHandle(store, "run-caused", "scout.weaver")
	trigger, err := root.Append(ctx, EventTypeURLScraped, &URLScrapedPayload{URL: "https://example.org/trigger", StatusCode: 200})
	require.NoError(t, err)

	child := root.Caused(trigger.Seq, "weaver.situation")
	firstChild, err := child.Append(ctx, EventTypeSituationIdentified, &SituationIdentifiedPayload{
		SituationID: "situation-1",
		Headline:    "New activity near downtown",
		SignalIDs:   []string{"gathering-1"},
	})
	require.NoError(t, err)
	require.NotNil(t, firstChild.CausedBySeq)
	assert.Equal(t, trigger.Seq, *firstChild.CausedBySeq)
	assert.Nil(t, firstChild.ParentSeq)

	secondChild, err := child.Append(ctx, EventTypeTagsAggregated, &TagsAggregatedPayload{
		SituationID: "situation-1",
		TagSlugs:    []string{"downtown", "gathering"},
	})
	require.NoError(t, err)
	assert.Nil(t, secondChild.CausedBySeq, "caused_by_seq should only be stamped on the first event in a caused chain")
	require.NotNil(t, secondChild.ParentSeq)
	assert.Equal(t, firstChild.Seq, *secondChild.ParentSeq)
}
