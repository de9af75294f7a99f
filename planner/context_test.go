package planner

import (
	"sync"
	"testing"
)

func TestSessionContextSetGet(t *testing.T) {
	ctx := NewSessionContext("s-1")

	if got := ctx.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for missing key, got %v", got)
	}

	ctx.Set("phase", "profile")
	ctx.Set("phase", "architect") // last write wins
	if got := ctx.Get("phase", nil); got != "architect" {
		t.Errorf("expected overwrite, got %v", got)
	}
}

func TestSessionContextSnapshotIsCopy(t *testing.T) {
	ctx := NewSessionContext("s-2")
	ctx.Set("a", 1)

	snap := ctx.Snapshot()
	snap["a"] = 99
	snap["b"] = 2

	if got := ctx.Get("a", nil); got != 1 {
		t.Errorf("snapshot mutation leaked into context: %v", got)
	}
	if got := ctx.Get("b", nil); got != nil {
		t.Errorf("snapshot addition leaked into context: %v", got)
	}
}

func TestSessionContextConcurrentWrites(t *testing.T) {
	ctx := NewSessionContext("s-3")

	var wg sync.WaitGroup
	keys := []string{"nutrition_review", "pantry_review"}
	for _, key := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ctx.Set(k, i)
			}
		}(key)
	}
	wg.Wait()

	for _, key := range keys {
		if got := ctx.Get(key, nil); got != 99 {
			t.Errorf("key %s = %v, want 99", key, got)
		}
	}
}
