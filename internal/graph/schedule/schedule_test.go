package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromRRULE_ExpandsWeeklyOccurrences(t *testing.T) {
	s, err := NewFromRRULE("FREQ=WEEKLY;BYDAY=SA;COUNT=4", nil, nil, "America/New_York")
	require.NoError(t, err)
	assert.True(t, s.IsRecurring())

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	occ := s.Occurrences(from, to)
	assert.Len(t, occ, 4)
}

func TestNewFromRRULE_InvalidRRuleFailsClosed(t *testing.T) {
	_, err := NewFromRRULE("not a valid rrule", nil, nil, "")
	assert.Error(t, err, "an invalid rrule must surface as an error so the caller falls back to NewFromText")
}

func TestNewFromText_NeverProducesOccurrences(t *testing.T) {
	s := NewFromText("every other Tuesday, weather permitting")
	assert.False(t, s.IsRecurring())
	occ := s.Occurrences(time.Now(), time.Now().AddDate(1, 0, 0))
	assert.Empty(t, occ)
}

func TestOccurrences_ExcludesExceptionDates(t *testing.T) {
	s, err := NewFromRRULE("DTSTART=20260301T000000Z;FREQ=DAILY;COUNT=5", nil, nil, "")
	require.NoError(t, err)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	all := s.Occurrences(from, from.AddDate(0, 1, 0))
	require.Len(t, all, 5)

	excluded := &Schedule{RRule: s.RRule, ExceptionDates: []time.Time{all[1]}}
	filtered := excluded.Occurrences(from, from.AddDate(0, 1, 0))
	assert.Len(t, filtered, 4)
}

func TestNextOccurrence_ReturnsEarliestInWindow(t *testing.T) {
	s, err := NewFromRRULE("FREQ=WEEKLY;BYDAY=MO;COUNT=10", nil, nil, "")
	require.NoError(t, err)

	after := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	next, ok := s.NextOccurrence(after)
	require.True(t, ok)
	assert.Equal(t, time.Monday, next.Weekday())
	assert.True(t, next.After(after) || next.Equal(after))
}
