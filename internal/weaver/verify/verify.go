// Package verify implements the four post-hoc dispatch checks spec
// §4.5.1 step 7 requires after every weaving pass writes a dispatch:
// citation check, PII scan, citation coverage, and semantic fidelity.
// Each check is a pure function over a Dispatch plus whatever graph facts
// it needs, composed by Run rather than folded into one monolithic
// verifier — a caller that only wants the citation check (e.g. a unit
// test) never pays for the others.
package verify

import (
	"regexp"
	"strings"

	"github.com/fourthplaces/rootsignal/internal/graph/dedup"
)

// citationToken matches an inline [signal:UUID] citation, spec §4.5.1's
// required grounding format for every factual sentence a dispatch makes.
var citationToken = regexp.MustCompile(`\[signal:([0-9a-fA-F-]{36})\]`)

// Dispatch is the subset of an ent Dispatch row verification needs.
type Dispatch struct {
	ID   string
	Body string
}

// CitedSignal is one signal a dispatch body cites, with its embedding for
// the fidelity check.
type CitedSignal struct {
	ID        string
	Embedding []float32
}

// Result is the outcome of running all four checks against one dispatch.
// FlagReason is empty when every check passes; a dispatch the caller
// flags sets ent's flagged_for_review/flag_reason fields from it.
type Result struct {
	Passed       bool
	FlagReason   string
	FidelityScore float64
}

// PIIScanner detects personally-identifying text a dispatch body
// shouldn't carry (spec §4.5.1's prompt rule: "no actor roles, names
// only" plus the general PII scan) — implemented by internal/masking,
// named here so verify doesn't import it back.
type PIIScanner interface {
	ContainsPII(text string) (bool, string)
}

// FidelityThreshold is the minimum cosine similarity between a cited
// sentence and its cited signal's embedding (spec §4.5.1 step 7).
const FidelityThreshold = 0.5

// ExtractCitations returns every signal UUID a dispatch body cites, in
// order of first appearance, deduplicated.
func ExtractCitations(body string) []string {
	matches := citationToken.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// CitationCheck reports whether every cited UUID resolves to a signal
// the caller says exists — a citation to a UUID outside knownSignalIDs
// fails this check, per spec §8's invariant "every [signal:UUID] token
// resolves to an existing signal, or flagged_for_review = true".
func CitationCheck(body string, knownSignalIDs map[string]bool) (ok bool, unresolved []string) {
	for _, id := range ExtractCitations(body) {
		if !knownSignalIDs[id] {
			unresolved = append(unresolved, id)
		}
	}
	return len(unresolved) == 0, unresolved
}

// CoverageCheck reports whether the body actually cites at least one
// signal — a dispatch with zero citation tokens makes claims nothing
// grounds, regardless of whether prose is otherwise well-formed.
func CoverageCheck(body string) bool {
	return len(ExtractCitations(body)) > 0
}

// FidelityCheck computes the mean cosine similarity between the
// dispatch's own embedding and each cited signal's embedding, the
// semantic-fidelity proxy spec §4.5.1 asks for ("cosine similarity >= 0.5
// between each cited sentence and its cited signal's embedding" —
// approximated here at dispatch-body granularity since sentence-level
// citation spans aren't tracked separately from the body itself).
func FidelityCheck(dispatchEmbedding []float32, cited []CitedSignal) (score float64, ok bool) {
	if len(cited) == 0 {
		return 0, false
	}
	var sum float64
	for _, c := range cited {
		sum += dedup.CosineSimilarity(dispatchEmbedding, c.Embedding)
	}
	score = sum / float64(len(cited))
	return score, score >= FidelityThreshold
}

// Run applies all four checks in order, short-circuiting at the first
// failure since a dispatch that fails citation resolution has nothing
// meaningful left to score for fidelity.
func Run(d Dispatch, dispatchEmbedding []float32, knownSignalIDs map[string]bool, cited []CitedSignal, scanner PIIScanner) Result {
	if ok, unresolved := CitationCheck(d.Body, knownSignalIDs); !ok {
		return Result{FlagReason: "unresolved citation: " + strings.Join(unresolved, ", ")}
	}
	if !CoverageCheck(d.Body) {
		return Result{FlagReason: "no citations in dispatch body"}
	}
	if scanner != nil {
		if has, detail := scanner.ContainsPII(d.Body); has {
			return Result{FlagReason: "pii detected: " + detail}
		}
	}
	score, ok := FidelityCheck(dispatchEmbedding, cited)
	if !ok {
		return Result{FlagReason: "low semantic fidelity", FidelityScore: score}
	}
	return Result{Passed: true, FidelityScore: score}
}
