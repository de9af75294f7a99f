package tools

import (
	"reflect"
	"testing"
)

func TestSaveAndTagNormalizesTags(t *testing.T) {
	store := NewMemoryStagingStore()
	toolset := &PlanStagingToolset{store: store}

	result, err := toolset.SaveAndTag(
		map[string]any{"week": []string{"Mon"}},
		[]string{"Draft", "draft", "  WEEKLY ", ""},
	)
	if err != nil {
		t.Fatalf("SaveAndTag failed: %v", err)
	}

	if result.Status != "stored" {
		t.Errorf("expected status stored, got %q", result.Status)
	}
	if !reflect.DeepEqual(result.AppliedTags, []string{"draft", "weekly"}) {
		t.Errorf("tags not normalized: %v", result.AppliedTags)
	}

	staged, ok := store.Get(result.PlanID)
	if !ok {
		t.Fatalf("plan %q not retrievable", result.PlanID)
	}
	if !reflect.DeepEqual(staged.Tags, []string{"draft", "weekly"}) {
		t.Errorf("stored tags mismatch: %v", staged.Tags)
	}
}

func TestMemoryStagingStoreIDsAreSequential(t *testing.T) {
	store := NewMemoryStagingStore()

	first, _ := store.Save(map[string]any{}, nil)
	second, _ := store.Save(map[string]any{}, nil)

	if first != "plan-1" || second != "plan-2" {
		t.Errorf("expected plan-1, plan-2; got %s, %s", first, second)
	}
	if _, ok := store.Get("plan-99"); ok {
		t.Error("unknown id should not resolve")
	}
}
