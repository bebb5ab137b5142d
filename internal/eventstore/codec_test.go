package eventstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatheringCorrectedPayloadRoundTrip(t *testing.T) {
	t.Run("title correction survives marshal/unmarshal", func(t *testing.T) {
		payload := GatheringCorrectedPayload{
			SignalID:   "gathering-1",
			Correction: GatheringCorrectionTitle{Old: "Food Drive", New: "Community Food Drive"},
		}

		data, err := json.Marshal(payload)
		require.NoError(t, err)

		var decoded GatheringCorrectedPayload
		require.NoError(t, json.Unmarshal(data, &decoded))

		assert.Equal(t, "gathering-1", decoded.SignalID)
		title, ok := decoded.Correction.(GatheringCorrectionTitle)
		require.True(t, ok, "expected GatheringCorrectionTitle, got %T", decoded.Correction)
		assert.Equal(t, "Food Drive", title.Old)
		assert.Equal(t, "Community Food Drive", title.New)
	})

	t.Run("starts_at correction preserves time values", func(t *testing.T) {
		oldTime := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
		newTime := time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC)
		payload := GatheringCorrectedPayload{
			SignalID:   "gathering-2",
			Correction: GatheringCorrectionStartsAt{Old: oldTime, New: newTime},
		}

		data, err := json.Marshal(payload)
		require.NoError(t, err)

		var decoded GatheringCorrectedPayload
		require.NoError(t, json.Unmarshal(data, &decoded))

		startsAt, ok := decoded.Correction.(GatheringCorrectionStartsAt)
		require.True(t, ok)
		assert.True(t, startsAt.Old.Equal(oldTime))
		assert.True(t, startsAt.New.Equal(newTime))
	})

	t.Run("unknown correction kind is rejected", func(t *testing.T) {
		raw := []byte(`{"signal_id":"gathering-3","correction":{"kind":"nonexistent_field","value":{}}}`)

		var decoded GatheringCorrectedPayload
		err := json.Unmarshal(raw, &decoded)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownEventType)
	})
}

func TestSituationChangedPayloadRoundTrip(t *testing.T) {
	t.Run("temperature change survives marshal/unmarshal", func(t *testing.T) {
		payload := SituationChangedPayload{
			SituationID: "situation-1",
			Change:      SituationChangeTemperature{Old: 0.4, New: 0.71},
		}

		data, err := json.Marshal(payload)
		require.NoError(t, err)

		var decoded SituationChangedPayload
		require.NoError(t, json.Unmarshal(data, &decoded))

		temp, ok := decoded.Change.(SituationChangeTemperature)
		require.True(t, ok)
		assert.InDelta(t, 0.4, temp.Old, 0.0001)
		assert.InDelta(t, 0.71, temp.New, 0.0001)
	})
}

func TestSourceChangedPayloadRoundTrip(t *testing.T) {
	t.Run("active change survives marshal/unmarshal", func(t *testing.T) {
		payload := SourceChangedPayload{
			SourceID: "source-1",
			Change:   SourceChangeActive{Old: true, New: false},
		}

		data, err := json.Marshal(payload)
		require.NoError(t, err)

		var decoded SourceChangedPayload
		require.NoError(t, json.Unmarshal(data, &decoded))

		active, ok := decoded.Change.(SourceChangeActive)
		require.True(t, ok)
		assert.True(t, active.Old)
		assert.False(t, active.New)
	})
}
