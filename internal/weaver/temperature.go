// Package weaver implements the Situation Weaver (spec §4.5): clustering
// staged signals into situations, writing dispatch narratives, and
// maintaining a temperature derived entirely from graph mechanics — no
// LLM value enters the formula below.
package weaver

import "math"

// SituationStats is the graph-derived input to Temperature — every field
// is something internal/graph/enrichment or a direct ent query already
// computed; nothing here calls an LLM.
type SituationStats struct {
	TensionHeatAgg        float64 // mean cause_heat of non-debunked Tensions, 0 if none
	NetNewEntities7d      int
	NetNewEntities30d     int
	UnmetTensions90d      int
	TotalTensions90d      int
	ExternalCityRefs      int
	ThesisSupportCount    int // non-debunked Tensions with cause_heat >= 0.5
	ThesisDiversityCount  int // their unique-source count
	DaysSinceLastSignal   float64
}

// Components is every named scalar Temperature derives, each in [0, 1] —
// stored back onto the ent Situation row verbatim so the composite is
// always reproducible from its parts.
type Components struct {
	TensionHeatAgg  float64
	EntityVelocity  float64
	ResponseGap     float64
	Amplification   float64
	ClarityNeed     float64
	Temperature     float64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Temperature computes the full component breakdown and composite score
// (spec §4.5.2). Amplification is deliberately multiplicative against
// substance, not additive — a situation with zero tension heat and zero
// entity velocity gets zero amplification contribution no matter how
// many external references it picked up.
func Temperature(s SituationStats) Components {
	tensionHeatAgg := clamp01(s.TensionHeatAgg)

	fast := clamp01(float64(s.NetNewEntities7d) / 3)
	slow := clamp01(float64(s.NetNewEntities30d) / 5)
	entityVelocity := math.Max(fast, slow)

	responseGap := 0.0
	if s.TotalTensions90d > 0 {
		responseGap = clamp01(float64(s.UnmetTensions90d) / float64(s.TotalTensions90d))
	}

	amplification := clamp01(float64(s.ExternalCityRefs) / 5)

	thesisSupport := clamp01(float64(s.ThesisSupportCount) / 3)
	thesisDiversity := clamp01(float64(s.ThesisDiversityCount) / 2)
	clarityScore := thesisSupport * thesisDiversity
	clarityNeed := 1 - clarityScore
	if s.DaysSinceLastSignal > 30 {
		decay := clamp01(1 - (s.DaysSinceLastSignal-30)/60)
		clarityNeed *= decay
	}

	substance := math.Min(tensionHeatAgg+entityVelocity, 1)
	amplificationContrib := amplification * substance

	temperature := 0.30*tensionHeatAgg +
		0.25*entityVelocity +
		0.15*responseGap +
		0.15*amplificationContrib +
		0.15*clarityNeed

	return Components{
		TensionHeatAgg: tensionHeatAgg,
		EntityVelocity: entityVelocity,
		ResponseGap:    responseGap,
		Amplification:  amplification,
		ClarityNeed:    clarityNeed,
		Temperature:    clamp01(temperature),
	}
}
