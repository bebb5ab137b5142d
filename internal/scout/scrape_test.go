package scout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
)

func TestClassify_PicksTheOneNonNilVariant(t *testing.T) {
	typ, fields := classify(llmclient.ExtractedSignal{Need: &llmclient.NeedFields{Urgency: "high"}})
	assert.Equal(t, "need", typ)
	assert.Equal(t, &llmclient.NeedFields{Urgency: "high"}, fields)

	typ, fields = classify(llmclient.ExtractedSignal{})
	assert.Empty(t, typ)
	assert.Nil(t, fields)
}

func TestBuildDiscoveryEvent_GatheringRoundTripsFields(t *testing.T) {
	core := eventstore.SignalCore{SignalID: "sig-1", Title: "Block party"}
	ends := "2026-08-02T20:00:00Z"
	evtType, payload, err := buildDiscoveryEvent("gathering", core, &llmclient.GatheringFields{
		StartsAt:    "2026-08-02T18:00:00Z",
		EndsAt:      &ends,
		Organizer:   "Riverside Neighbors",
		IsRecurring: false,
	})
	require.NoError(t, err)
	assert.Equal(t, eventstore.EventTypeGatheringDiscovered, evtType)

	g, ok := payload.(*eventstore.GatheringDiscoveredPayload)
	require.True(t, ok)
	assert.Equal(t, "sig-1", g.SignalCore.SignalID)
	assert.Equal(t, "Riverside Neighbors", g.Organizer)
	require.NotNil(t, g.EndsAt)
	assert.Equal(t, 2026, g.EndsAt.Year())
}

func TestBuildDiscoveryEvent_UnknownTypeErrors(t *testing.T) {
	_, _, err := buildDiscoveryEvent("unknown", eventstore.SignalCore{}, nil)
	assert.Error(t, err)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.org", hostOf("https://example.org/events/block-party"))
	assert.Equal(t, "", hostOf(":not-a-url"))
}

func TestParseContentDate(t *testing.T) {
	assert.Nil(t, parseContentDate(nil))

	raw := "2026-08-02T00:00:00Z"
	got := parseContentDate(&raw)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)))

	bad := "not-a-date"
	assert.Nil(t, parseContentDate(&bad))
}
