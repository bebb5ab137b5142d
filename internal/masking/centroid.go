package masking

import "math"

// DefaultGridDegrees is the snap-to-grid resolution for publicly exposed
// situation centroids — spec §4.5.4's "Stored centroid is exact; API-
// exposed centroid is snapped to a grid." At the equator 0.01 degrees is
// roughly 1.1km, coarse enough to deny block-level location fixes on a
// sensitive situation while keeping the point useful for a city-scale map.
const DefaultGridDegrees = 0.01

// FuzzCentroid snaps an exact (lat, lng) to the nearest point on a grid of
// the given resolution in degrees. Never mutates the stored value — callers
// apply this only at the API-response boundary, never before writing the
// exact centroid to ent.
func FuzzCentroid(lat, lng, gridDegrees float64) (float64, float64) {
	if gridDegrees <= 0 {
		gridDegrees = DefaultGridDegrees
	}
	return snap(lat, gridDegrees), snap(lng, gridDegrees)
}

func snap(v, grid float64) float64 {
	return math.Round(v/grid) * grid
}
