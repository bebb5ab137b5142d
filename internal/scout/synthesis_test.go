package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal/ent"
)

func TestBestActorMatch_PicksClosestNameAboveThreshold(t *testing.T) {
	actors := []*ent.Actor{
		{ID: "actor-1", Name: "Riverside Food Pantry"},
		{ID: "actor-2", Name: "Riverside Neighbors Association"},
	}

	id, ok := bestActorMatch(actors, "Riverside Food Pantry")
	assert.True(t, ok)
	assert.Equal(t, "actor-1", id)

	_, ok = bestActorMatch(actors, "Completely Unrelated Org")
	assert.False(t, ok)
}

func TestBestActorMatch_NoActorsNoMatch(t *testing.T) {
	_, ok := bestActorMatch(nil, "Anything")
	assert.False(t, ok)
}
