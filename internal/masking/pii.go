// Package masking implements the privacy-preserving surface spec §4.5.1 and
// §8 require of a public dispatch: a PII scan over dispatch bodies (plugged
// into internal/weaver/verify as its PIIScanner), centroid fuzzing for
// publicly exposed situation locations, and the admin-only gate over
// structured_state.mentioned_actors. Adapted from the teacher's
// pkg/masking, trimmed to the patterns a civic-signal dispatch body can
// actually carry — credential/secret patterns (api_key, aws_secret_key,
// kubernetes_secret, ...) have no home here since dispatch prose never
// carries infrastructure secrets; see DESIGN.md for the per-pattern call.
package masking

import "regexp"

// CompiledPattern is one named, pre-compiled PII detector — the teacher's
// pkg/masking.CompiledPattern shape, without the config-driven pattern-group
// indirection this package has no caller for yet.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Description string
}

// builtinPIIPatterns are the regex sweeps PatternScanner runs over every
// dispatch body. email is carried over verbatim from the teacher's builtin
// set; phone and ssn are new, grounded in the same "PII scan" requirement
// spec §4.5.1 names but not detailed further.
func builtinPIIPatterns() []CompiledPattern {
	return []CompiledPattern{
		{
			Name:        "email",
			Regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`),
			Description: "email address",
		},
		{
			Name:        "phone",
			Regex:       regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`),
			Description: "phone number",
		},
		{
			Name:        "ssn",
			Regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Description: "social security number",
		},
	}
}

// PatternScanner implements internal/weaver/verify.PIIScanner by running a
// fixed set of regex sweeps over dispatch text — the same compiled-pattern
// sweep the teacher's Service.applyMasking runs, minus the config-group
// resolution step this package has no per-server config to resolve against.
type PatternScanner struct {
	patterns []CompiledPattern
}

// NewPatternScanner builds a scanner over the builtin PII pattern set.
func NewPatternScanner() *PatternScanner {
	return &PatternScanner{patterns: builtinPIIPatterns()}
}

// ContainsPII reports whether text matches any pattern, returning the first
// match's description for the caller's flag_reason.
func (s *PatternScanner) ContainsPII(text string) (bool, string) {
	for _, p := range s.patterns {
		if p.Regex.MatchString(text) {
			return true, p.Description
		}
	}
	return false, ""
}
