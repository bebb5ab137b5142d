// Package dedup implements the dedup_verdict decision (spec §4.3.3): given
// a candidate signal and what's already known about title and embedding
// matches against the graph, decide whether extraction should mint a new
// signal, corroborate an existing one from a different source, or refresh
// one already seen from the same host.
package dedup

import (
	"math"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// TitleSimilarityThreshold is the Jaro-Winkler score above which two
// normalized titles are considered the same signal restated, not two
// distinct ones that happen to share words.
const TitleSimilarityThreshold = 0.92

// EmbeddingSimilarityThreshold is the cosine-similarity floor above which
// two signals are considered semantically the same occurrence.
const EmbeddingSimilarityThreshold = 0.88

// Candidate is the signal being evaluated.
type Candidate struct {
	Type  string
	Title string
	Host  string // canonical_value host of source_url
}

// TitleMatch is one existing signal whose normalized title matches (or
// nearly matches) the candidate's, found by a caller-side lookup across
// the candidate's signal type.
type TitleMatch struct {
	ExistingID string
	Title      string
	Host       string
}

// EmbeddingMatch is the closest existing signal above
// EmbeddingSimilarityThreshold, found by a caller-side pgvector query.
type EmbeddingMatch struct {
	ExistingID string
	Similarity float64
	Host       string
}

// Verdict is the sum type dedup_verdict returns. Exactly one constructor
// below produces each variant — the caller switches on the concrete type,
// never a string tag.
type Verdict interface {
	isVerdict()
}

type CreateVerdict struct{}

func (CreateVerdict) isVerdict() {}

type CorroborateVerdict struct {
	ExistingID string
}

func (CorroborateVerdict) isVerdict() {}

type RefreshVerdict struct {
	ExistingID string
}

func (RefreshVerdict) isVerdict() {}

// Decide applies the five ordered rules from spec §4.3.3. titleMatches and
// embeddingMatch are resolved by the caller (a title-index lookup and a
// pgvector nearest-neighbor query, respectively) — this function stays
// pure so it's trivially unit-testable without a database.
func Decide(node Candidate, titleMatches []TitleMatch, embeddingMatch *EmbeddingMatch) Verdict {
	normalizedTitle := NormalizeTitle(node.Title)

	for _, m := range titleMatches {
		if !titlesMatch(normalizedTitle, NormalizeTitle(m.Title)) {
			continue
		}
		if m.Host != node.Host {
			return CorroborateVerdict{ExistingID: m.ExistingID}
		}
		return RefreshVerdict{ExistingID: m.ExistingID}
	}

	if embeddingMatch != nil && embeddingMatch.Similarity >= EmbeddingSimilarityThreshold {
		if embeddingMatch.Host != node.Host {
			return CorroborateVerdict{ExistingID: embeddingMatch.ExistingID}
		}
		return RefreshVerdict{ExistingID: embeddingMatch.ExistingID}
	}

	return CreateVerdict{}
}

// titlesMatch reports whether two already-normalized titles are close
// enough to call the same signal restated.
func titlesMatch(a, b string) bool {
	if a == b {
		return true
	}
	return matchr.JaroWinkler(a, b, true) >= TitleSimilarityThreshold
}

// NormalizeTitle lowercases, strips punctuation, and collapses whitespace
// so "Block Party!" and "block party" compare equal before fuzzy matching
// even has to run.
func NormalizeTitle(title string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			if !lastWasSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CosineSimilarity computes the cosine similarity between two equal-length
// embedding vectors. Returns 0 if either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
