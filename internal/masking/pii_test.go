package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal/internal/weaver/verify"
)

var _ verify.PIIScanner = (*PatternScanner)(nil)

func TestPatternScanner_DetectsEmail(t *testing.T) {
	s := NewPatternScanner()
	has, detail := s.ContainsPII("Contact the organizer at jane.doe@example.org for details.")
	assert.True(t, has)
	assert.Equal(t, "email address", detail)
}

func TestPatternScanner_DetectsPhone(t *testing.T) {
	s := NewPatternScanner()
	has, detail := s.ContainsPII("Call the hotline at 555-867-5309 to volunteer.")
	assert.True(t, has)
	assert.Equal(t, "phone number", detail)
}

func TestPatternScanner_DetectsSSN(t *testing.T) {
	s := NewPatternScanner()
	has, _ := s.ContainsPII("Recipient identified as 123-45-6789 in the intake form.")
	assert.True(t, has)
}

func TestPatternScanner_CleanTextPasses(t *testing.T) {
	s := NewPatternScanner()
	has, detail := s.ContainsPII("Volunteers are gathering supplies at the community center this evening.")
	assert.False(t, has)
	assert.Empty(t, detail)
}
