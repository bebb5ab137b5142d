package weaver

import "math"

// CentroidSignal is one non-debunked signal contributing to a dampened
// centroid recompute (spec §4.5.4).
type CentroidSignal struct {
	Lat      float64
	Lng      float64
	DaysOld  float64
	CauseHeat float64
}

// DampedWeight is w_i = exp(-0.03 * days_old_i) * (0.3 + 0.7 * cause_heat_i)
// — recent, high-heat signals dominate the centroid; the 0.3 floor keeps
// a zero-heat signal from vanishing entirely.
func DampedWeight(daysOld, causeHeat float64) float64 {
	return math.Exp(-0.03*daysOld) * (0.3 + 0.7*causeHeat)
}

// UpdateCentroid computes the weighted-average (lat, lng) over signals,
// self-correcting as high-heat signals accumulate and preventing an early
// misassignment from permanently skewing the situation's location. Returns
// ok=false if every signal has a non-positive weight (nothing to average).
func UpdateCentroid(signals []CentroidSignal) (lat, lng float64, ok bool) {
	var sumW, sumLat, sumLng float64
	for _, s := range signals {
		w := DampedWeight(s.DaysOld, s.CauseHeat)
		sumW += w
		sumLat += w * s.Lat
		sumLng += w * s.Lng
	}
	if sumW <= 0 {
		return 0, 0, false
	}
	return sumLat / sumW, sumLng / sumW, true
}
