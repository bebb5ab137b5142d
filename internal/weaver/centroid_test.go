package weaver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCentroid_WeightsRecentHighHeatSignalsMore(t *testing.T) {
	lat, _, ok := UpdateCentroid([]CentroidSignal{
		{Lat: 0, DaysOld: 60, CauseHeat: 0.1},  // old, low heat: low weight
		{Lat: 10, DaysOld: 1, CauseHeat: 0.9},  // fresh, high heat: dominates
	})
	require.True(t, ok)
	assert.Greater(t, lat, 5.0, "the fresh high-heat signal should pull the centroid toward it")
}

func TestUpdateCentroid_NoSignalsReturnsNotOK(t *testing.T) {
	_, _, ok := UpdateCentroid(nil)
	assert.False(t, ok)
}

func TestDampedWeight_FloorIsPositiveEvenAtZeroHeat(t *testing.T) {
	w := DampedWeight(0, 0)
	assert.InDelta(t, 0.3, w, 1e-9)
}
