package scout

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetTracker_AllowGatesAtLimit(t *testing.T) {
	b := NewBudgetTracker(100)
	assert.True(t, b.Allow(60))
	assert.True(t, b.Allow(30))
	assert.False(t, b.Allow(20), "90 + 20 would cross the 100-cent limit")
	assert.True(t, b.Allow(10), "exactly at the limit should still be allowed")
	assert.True(t, b.Exhausted())
}

func TestBudgetTracker_AllowIsSafeForConcurrentCallers(t *testing.T) {
	b := NewBudgetTracker(1000)
	var wg sync.WaitGroup
	granted := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted <- b.Allow(10)
		}()
	}
	wg.Wait()
	close(granted)

	count := 0
	for g := range granted {
		if g {
			count++
		}
	}
	assert.Equal(t, 100, count, "exactly 100 of 200 10-cent charges should fit a 1000-cent budget")
	assert.Equal(t, int64(1000), b.Spent())
}
