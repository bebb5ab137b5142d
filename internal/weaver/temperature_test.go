package weaver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemperature_HighHeatManyDistinctSourcesFastVelocity(t *testing.T) {
	c := Temperature(SituationStats{
		TensionHeatAgg:       0.8,
		NetNewEntities7d:     6, // clamp(6/3)=1
		NetNewEntities30d:    0,
		UnmetTensions90d:     2,
		TotalTensions90d:     8,
		ExternalCityRefs:     0,
		ThesisSupportCount:   3,
		ThesisDiversityCount: 6, // 6 distinct sources from the spec's example
	})
	assert.InDelta(t, 0.8, c.TensionHeatAgg, 1e-9)
	assert.GreaterOrEqual(t, c.EntityVelocity, 0.6, "6 net-new entities in 7d should clamp to 1.0 >= 0.6")
	assert.InDelta(t, 1.0, c.EntityVelocity, 1e-9)
}

func TestTemperature_ZeroActivityIsZero(t *testing.T) {
	c := Temperature(SituationStats{})
	assert.InDelta(t, 0, c.TensionHeatAgg, 1e-9)
	assert.InDelta(t, 0, c.EntityVelocity, 1e-9)
	assert.InDelta(t, 0, c.Amplification, 1e-9)
	// clarity_need is 1 at zero thesis support/diversity (no staleness decay since
	// DaysSinceLastSignal is 0, not > 30).
	assert.InDelta(t, 1.0, c.ClarityNeed, 1e-9)
}

func TestTemperature_AmplificationContributesNothingWithoutSubstance(t *testing.T) {
	withoutAmp := Temperature(SituationStats{})
	withAmp := Temperature(SituationStats{ExternalCityRefs: 10}) // clamps Amplification to 1.0
	// substance = min(tension_heat_agg + entity_velocity, 1) = 0 in both cases,
	// so amplification_contrib = amplification * 0 = 0 regardless of Amplification itself.
	assert.InDelta(t, withoutAmp.Temperature, withAmp.Temperature, 1e-9)
	assert.InDelta(t, 1.0, withAmp.Amplification, 1e-9)
}

func TestTemperature_StalenessDecaysClarityNeedAfter30Days(t *testing.T) {
	fresh := Temperature(SituationStats{ThesisSupportCount: 0, ThesisDiversityCount: 0, DaysSinceLastSignal: 20})
	stale := Temperature(SituationStats{ThesisSupportCount: 0, ThesisDiversityCount: 0, DaysSinceLastSignal: 90})
	assert.Greater(t, fresh.ClarityNeed, stale.ClarityNeed)
}

func TestTemperature_ResultClampedTo01(t *testing.T) {
	c := Temperature(SituationStats{
		TensionHeatAgg:       1,
		NetNewEntities7d:     100,
		UnmetTensions90d:     10,
		TotalTensions90d:     10,
		ExternalCityRefs:     100,
		ThesisSupportCount:   0,
		ThesisDiversityCount: 0,
	})
	assert.LessOrEqual(t, c.Temperature, 1.0)
	assert.GreaterOrEqual(t, c.Temperature, 0.0)
}
