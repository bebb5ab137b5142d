package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzCentroid_SnapsToGrid(t *testing.T) {
	lat, lng := FuzzCentroid(37.774123, -122.419321, DefaultGridDegrees)
	assert.InDelta(t, 37.77, lat, 1e-9)
	assert.InDelta(t, -122.42, lng, 1e-9)
}

func TestFuzzCentroid_SameGridCellForNearbyPoints(t *testing.T) {
	lat1, lng1 := FuzzCentroid(37.774001, -122.419001, DefaultGridDegrees)
	lat2, lng2 := FuzzCentroid(37.774999, -122.419999, DefaultGridDegrees)
	assert.Equal(t, lat1, lat2)
	assert.Equal(t, lng1, lng2)
}

func TestFuzzCentroid_DefaultsGridWhenNonPositive(t *testing.T) {
	lat, lng := FuzzCentroid(37.774123, -122.419321, 0)
	assert.InDelta(t, 37.77, lat, 1e-9)
	assert.InDelta(t, -122.42, lng, 1e-9)
}
