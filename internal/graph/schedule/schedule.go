// Package schedule wraps github.com/teambition/rrule-go behind the shape
// the ent Schedule node needs: an RRULE plus explicit/exception dates plus
// an IANA timezone, with an explicit fallback path to free text when no
// RRULE could be parsed (spec §4.4.3).
package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Schedule is the parsed, queryable form of an ent Schedule row. Exactly
// one of RRule or Text is set, mirroring the two-path constructor below —
// there is no third "both empty" state a caller can construct.
type Schedule struct {
	RRule          *rrule.RRule
	RRuleText      string
	ExplicitDates  []time.Time
	ExceptionDates []time.Time
	Timezone       *time.Location
	Text           string
}

// NewFromRRULE parses an RRULE string plus its explicit/exception dates.
// Callers that already have a valid RRULE (the extractor asserted one, or
// internal/graph read one back out of storage) use this path; a parse
// failure here is the caller's signal to fall back to NewFromText instead
// of losing the schedule entirely.
func NewFromRRULE(rruleText string, explicitDates, exceptionDates []time.Time, timezone string) (*Schedule, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("schedule: invalid timezone %q: %w", timezone, err)
		}
		loc = l
	}

	r, err := rrule.StrToRRule(rruleText)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid rrule %q: %w", rruleText, err)
	}

	return &Schedule{
		RRule:          r,
		RRuleText:      rruleText,
		ExplicitDates:  explicitDates,
		ExceptionDates: exceptionDates,
		Timezone:       loc,
	}, nil
}

// NewFromText builds a schedule from the extractor's natural-language
// fallback — used when the source text described a recurrence the
// extractor couldn't resolve to a valid RRULE (e.g. "every other Tuesday,
// weather permitting"). The Schedule carries no occurrence logic in this
// path; Occurrences always returns an empty slice.
func NewFromText(text string) *Schedule {
	return &Schedule{Text: text}
}

// IsRecurring reports whether this schedule has machine-readable
// occurrence logic at all.
func (s *Schedule) IsRecurring() bool {
	return s.RRule != nil
}

// Occurrences returns every occurrence (explicit dates plus RRULE
// expansion, minus exceptions) in [from, to). A text-only schedule always
// returns an empty slice — there is nothing to expand.
func (s *Schedule) Occurrences(from, to time.Time) []time.Time {
	excluded := make(map[int64]bool, len(s.ExceptionDates))
	for _, d := range s.ExceptionDates {
		excluded[d.Unix()] = true
	}

	var out []time.Time
	if s.RRule != nil {
		for _, t := range s.RRule.Between(from, to, true) {
			if !excluded[t.Unix()] {
				out = append(out, t)
			}
		}
	}
	for _, d := range s.ExplicitDates {
		if (d.Equal(from) || d.After(from)) && d.Before(to) && !excluded[d.Unix()] {
			out = append(out, d)
		}
	}
	return out
}

// NextOccurrence returns the earliest occurrence at or after after, if
// any — used by the scrape reaper to decide whether a recurring gathering
// is still relevant or has run out its series.
func (s *Schedule) NextOccurrence(after time.Time) (time.Time, bool) {
	window := s.Occurrences(after, after.AddDate(1, 0, 0))
	if len(window) == 0 {
		return time.Time{}, false
	}
	next := window[0]
	for _, t := range window[1:] {
		if t.Before(next) {
			next = t
		}
	}
	return next, true
}
