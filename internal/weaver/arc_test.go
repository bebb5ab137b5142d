package weaver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveArc_ColdReactivationNeeds0_3(t *testing.T) {
	res := DeriveArc(ArcCold, 0.3, 200*time.Hour)
	assert.Equal(t, ArcDeveloping, res.Arc)
	assert.True(t, res.Reactivation)
}

func TestDeriveArc_ColdReboundBelow0_3StaysCooling(t *testing.T) {
	res := DeriveArc(ArcCold, 0.20, 200*time.Hour)
	assert.Equal(t, ArcCooling, res.Arc)
	assert.False(t, res.Reactivation, "a 0.20 rebound is not a reactivation - the 0.3 threshold prevents dead-cat bounces")
}

func TestDeriveArc_ReactivationNeverProducesEmerging(t *testing.T) {
	res := DeriveArc(ArcCold, 0.9, 1*time.Hour)
	assert.Equal(t, ArcDeveloping, res.Arc, "a reactivated situation is old by definition, never Emerging")
}

func TestDeriveArc_FreshHighTemperatureIsEmerging(t *testing.T) {
	res := DeriveArc(ArcEmerging, 0.8, 10*time.Hour)
	assert.Equal(t, ArcEmerging, res.Arc)
}

func TestDeriveArc_MaturedHighTemperatureIsActive(t *testing.T) {
	res := DeriveArc(ArcDeveloping, 0.8, 100*time.Hour)
	assert.Equal(t, ArcActive, res.Arc)
}

func TestDeriveArc_MaturedMidTemperatureIsDeveloping(t *testing.T) {
	res := DeriveArc(ArcEmerging, 0.45, 100*time.Hour)
	assert.Equal(t, ArcDeveloping, res.Arc)
}

func TestDeriveArc_LowTemperatureIsCold(t *testing.T) {
	res := DeriveArc(ArcCooling, 0.05, 500*time.Hour)
	assert.Equal(t, ArcCold, res.Arc)
}
