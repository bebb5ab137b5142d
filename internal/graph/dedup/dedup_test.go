package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_SameTitleDifferentHostCorroborates(t *testing.T) {
	node := Candidate{Type: "gathering", Title: "Block Party!", Host: "parkscity.gov"}
	matches := []TitleMatch{{ExistingID: "gathering-1", Title: "block party", Host: "community-news.org"}}

	v := Decide(node, matches, nil)
	assert.Equal(t, CorroborateVerdict{ExistingID: "gathering-1"}, v)
}

func TestDecide_SameTitleSameHostRefreshes(t *testing.T) {
	node := Candidate{Type: "gathering", Title: "Block Party", Host: "parkscity.gov"}
	matches := []TitleMatch{{ExistingID: "gathering-1", Title: "Block Party", Host: "parkscity.gov"}}

	v := Decide(node, matches, nil)
	assert.Equal(t, RefreshVerdict{ExistingID: "gathering-1"}, v)
}

func TestDecide_EmbeddingMatchDifferentHostCorroborates(t *testing.T) {
	node := Candidate{Type: "gathering", Title: "Summer Block Bash", Host: "parkscity.gov"}
	match := &EmbeddingMatch{ExistingID: "gathering-2", Similarity: 0.95, Host: "community-news.org"}

	v := Decide(node, nil, match)
	assert.Equal(t, CorroborateVerdict{ExistingID: "gathering-2"}, v)
}

func TestDecide_EmbeddingMatchBelowThresholdCreates(t *testing.T) {
	node := Candidate{Type: "gathering", Title: "Summer Block Bash", Host: "parkscity.gov"}
	match := &EmbeddingMatch{ExistingID: "gathering-2", Similarity: 0.5, Host: "community-news.org"}

	v := Decide(node, nil, match)
	assert.Equal(t, CreateVerdict{}, v)
}

func TestDecide_NoMatchesCreates(t *testing.T) {
	v := Decide(Candidate{Type: "gathering", Title: "Brand New Event", Host: "parkscity.gov"}, nil, nil)
	assert.Equal(t, CreateVerdict{}, v)
}

func TestNormalizeTitle_StripsPunctuationAndCase(t *testing.T) {
	assert.Equal(t, "block party", NormalizeTitle("Block Party!"))
	assert.Equal(t, "block party", NormalizeTitle("  BLOCK   party.  "))
}

func TestCosineSimilarity_IdenticalVectorsIsOne(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 0.0001)
}

func TestCosineSimilarity_OrthogonalVectorsIsZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 0.0001)
}

func TestCosineSimilarity_MismatchedLengthIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1}))
}
