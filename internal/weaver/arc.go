package weaver

import "time"

// Arc is the closed set ent/schema/situation.go's arc enum names.
type Arc string

const (
	ArcEmerging   Arc = "emerging"
	ArcDeveloping Arc = "developing"
	ArcActive     Arc = "active"
	ArcCooling    Arc = "cooling"
	ArcCold       Arc = "cold"
)

// ReactivationThreshold is the temperature a Cold situation must cross to
// count as reactivated rather than a dead-cat bounce (spec §4.5.3).
const ReactivationThreshold = 0.3

// ActiveAge is the minimum situation age before Emerging can mature into
// Developing or Active.
const ActiveAge = 72 * time.Hour

// ArcResult is DeriveArc's output: the new arc plus whether this
// transition is a reactivation, since a reactivation gets its own
// dispatch type that a later "was this just Emerging" check can't
// distinguish from the arc value alone.
type ArcResult struct {
	Arc          Arc
	Reactivation bool
}

// DeriveArc applies the five ordered rules, first match wins (spec
// §4.5.3). previousArc is the situation's arc before this weaving pass;
// age is time since the situation was first identified.
func DeriveArc(previousArc Arc, temperature float64, age time.Duration) ArcResult {
	if previousArc == ArcCold && temperature >= ReactivationThreshold {
		return ArcResult{Arc: ArcDeveloping, Reactivation: true}
	}
	switch {
	case temperature < 0.1:
		return ArcResult{Arc: ArcCold}
	case temperature < 0.3:
		return ArcResult{Arc: ArcCooling}
	case age < ActiveAge:
		return ArcResult{Arc: ArcEmerging}
	case temperature < 0.6:
		return ArcResult{Arc: ArcDeveloping}
	default:
		return ArcResult{Arc: ArcActive}
	}
}
