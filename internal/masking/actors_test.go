package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactStructuredState_StripsActorsForNonAdmin(t *testing.T) {
	state := map[string]interface{}{
		"mentioned_actors": []string{"Mayor's Office", "Downtown Business Alliance"},
		"working_notes":    "clustered from 4 signals",
	}
	out := RedactStructuredState(state, false)
	assert.NotContains(t, out, MentionedActorsKey)
	assert.Contains(t, out, "working_notes")
}

func TestRedactStructuredState_KeepsActorsForAdmin(t *testing.T) {
	state := map[string]interface{}{
		"mentioned_actors": []string{"Mayor's Office"},
	}
	out := RedactStructuredState(state, true)
	assert.Contains(t, out, MentionedActorsKey)
}

func TestRedactStructuredState_NilStateIsNoop(t *testing.T) {
	assert.Nil(t, RedactStructuredState(nil, false))
}

func TestRedactStructuredState_DoesNotMutateOriginal(t *testing.T) {
	state := map[string]interface{}{"mentioned_actors": "x"}
	_ = RedactStructuredState(state, false)
	assert.Contains(t, state, MentionedActorsKey, "original map must be untouched")
}
