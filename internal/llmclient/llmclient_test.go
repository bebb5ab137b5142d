package llmclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedSignal_RoundTripsGatheringVariant(t *testing.T) {
	lat := 40.7128
	original := ExtractedSignal{
		SignalType: "gathering",
		Title:      "Block Party",
		SourceURL:  "https://example.org/block-party",
		AboutLat:   &lat,
		ResourceTags: []ResourceTag{
			{Tag: "generator", Role: ResourceTagOffers},
		},
		Gathering: &GatheringFields{
			StartsAt:    "2026-08-01T18:00:00Z",
			IsRecurring: false,
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ExtractedSignal
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.SignalType, decoded.SignalType)
	require.NotNil(t, decoded.Gathering)
	assert.Equal(t, "2026-08-01T18:00:00Z", decoded.Gathering.StartsAt)
	assert.Nil(t, decoded.Aid, "only the gathering variant should be set")
	require.Len(t, decoded.ResourceTags, 1)
	assert.Equal(t, ResourceTagOffers, decoded.ResourceTags[0].Role)
}
