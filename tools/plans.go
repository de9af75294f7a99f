package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// PlanTaggingResult reports a staged plan and its applied tags
type PlanTaggingResult struct {
	PlanID      string   `json:"plan_id"`
	AppliedTags []string `json:"applied_tags"`
	Status      string   `json:"status"`
}

// StagedPlan is one record held by a staging store
type StagedPlan struct {
	Plan      map[string]any `json:"plan"`
	Tags      []string       `json:"tags"`
	CreatedAt time.Time      `json:"created_at"`
}

// StagingStore holds draft plans between workflow phases. Injected so
// the lifecycle is owned by whoever builds the registry, not a package
// level singleton.
type StagingStore interface {
	Save(plan map[string]any, tags []string) (string, error)
	Get(planID string) (*StagedPlan, bool)
}

// MemoryStagingStore is the in-process StagingStore implementation
type MemoryStagingStore struct {
	mu      sync.Mutex
	counter int
	plans   map[string]StagedPlan
}

// NewMemoryStagingStore creates an empty in-memory staging store
func NewMemoryStagingStore() *MemoryStagingStore {
	return &MemoryStagingStore{plans: make(map[string]StagedPlan)}
}

// Save stores a plan and returns its assigned id (plan-1, plan-2, ...)
func (s *MemoryStagingStore) Save(plan map[string]any, tags []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	planID := fmt.Sprintf("plan-%d", s.counter)
	s.plans[planID] = StagedPlan{Plan: plan, Tags: tags, CreatedAt: time.Now().UTC()}
	return planID, nil
}

// Get returns a staged plan by id
func (s *MemoryStagingStore) Get(planID string) (*StagedPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged, ok := s.plans[planID]
	if !ok {
		return nil, false
	}
	return &staged, true
}

// PlanStagingToolset stages draft plans with normalized tags
type PlanStagingToolset struct {
	store StagingStore
}

// SaveAndTag stores a draft plan and attaches basic tags.
// Tags are lowercased, deduplicated, and sorted.
func (t *PlanStagingToolset) SaveAndTag(plan map[string]any, tags []string) (PlanTaggingResult, error) {
	normalized := normalizeTags(tags)
	planID, err := t.store.Save(plan, normalized)
	if err != nil {
		return PlanTaggingResult{}, err
	}
	return PlanTaggingResult{
		PlanID:      planID,
		AppliedTags: normalized,
		Status:      "stored",
	}, nil
}

func normalizeTags(tags []string) []string {
	set := make(map[string]bool)
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key != "" {
			set[key] = true
		}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
