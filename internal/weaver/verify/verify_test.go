package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCitations_DedupesAndPreservesOrder(t *testing.T) {
	body := "Power was cut [signal:11111111-1111-1111-1111-111111111111] and crews responded " +
		"[signal:22222222-2222-2222-2222-222222222222] [signal:11111111-1111-1111-1111-111111111111]."
	got := ExtractCitations(body)
	assert.Equal(t, []string{
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
	}, got)
}

func TestCitationCheck_FlagsUnresolvedUUID(t *testing.T) {
	body := "See [signal:33333333-3333-3333-3333-333333333333]."
	ok, unresolved := CitationCheck(body, map[string]bool{})
	assert.False(t, ok)
	assert.Equal(t, []string{"33333333-3333-3333-3333-333333333333"}, unresolved)
}

func TestCoverageCheck_FailsOnUncitedBody(t *testing.T) {
	assert.False(t, CoverageCheck("Power was cut across downtown."))
	assert.True(t, CoverageCheck("Power was cut [signal:11111111-1111-1111-1111-111111111111]."))
}

func TestFidelityCheck_ThresholdAt0_5(t *testing.T) {
	score, ok := FidelityCheck([]float32{1, 0}, []CitedSignal{{ID: "a", Embedding: []float32{1, 0}}})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)

	score, ok = FidelityCheck([]float32{1, 0}, []CitedSignal{{ID: "a", Embedding: []float32{0, 1}}})
	assert.False(t, ok)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestRun_PassesAWellFormedDispatch(t *testing.T) {
	d := Dispatch{ID: "d1", Body: "Power restored [signal:11111111-1111-1111-1111-111111111111]."}
	known := map[string]bool{"11111111-1111-1111-1111-111111111111": true}
	cited := []CitedSignal{{ID: "11111111-1111-1111-1111-111111111111", Embedding: []float32{1, 0}}}
	res := Run(d, []float32{1, 0}, known, cited, nil)
	assert.True(t, res.Passed)
	assert.Empty(t, res.FlagReason)
}

func TestRun_FlagsMissingCitation(t *testing.T) {
	d := Dispatch{ID: "d1", Body: "Power was restored across the district."}
	res := Run(d, []float32{1, 0}, map[string]bool{}, nil, nil)
	assert.False(t, res.Passed)
	assert.Contains(t, res.FlagReason, "no citations")
}
