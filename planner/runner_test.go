package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ecofood/db"
	"ecofood/providers"
	"ecofood/tools"
)

// fakeStore backs the runner's store interfaces in memory
type fakeStore struct {
	mu            sync.Mutex
	jobs          map[string]*db.PlanningJob
	events        []db.PlanningJobEvent
	saved         []db.SavePlanParams
	household     *db.Household
	cancelOnStage string
	nextEventID   int64
}

func newFakeStore(job *db.PlanningJob, household *db.Household) *fakeStore {
	return &fakeStore{
		jobs:      map[string]*db.PlanningJob{job.ID: job},
		household: household,
	}
}

func (f *fakeStore) GetJob(id string) (*db.PlanningJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (f *fakeStore) setStatus(id, status string) {
	if job, ok := f.jobs[id]; ok {
		job.Status = status
	}
}

func (f *fakeStore) MarkJobRunning(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobs[id].Status == db.JobPending {
		f.setStatus(id, db.JobRunning)
	}
	return nil
}

func (f *fakeStore) MarkJobCompleted(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobs[id].Status == db.JobRunning {
		f.setStatus(id, db.JobCompleted)
	}
	return nil
}

func (f *fakeStore) MarkJobFailed(id string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job := f.jobs[id]; job.Status == db.JobPending || job.Status == db.JobRunning {
		job.Status = db.JobFailed
		job.Error = reason
	}
	return nil
}

func (f *fakeStore) AddJobEvent(event db.PlanningJobEvent) (*db.PlanningJobEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextEventID++
	event.ID = f.nextEventID
	f.events = append(f.events, event)
	if f.cancelOnStage != "" && event.Stage == f.cancelOnStage {
		f.setStatus(event.JobID, db.JobCancelled)
		f.cancelOnStage = ""
	}
	return &event, nil
}

func (f *fakeStore) SavePlan(params db.SavePlanParams) (*db.MealPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, params)
	plan := &db.MealPlan{ID: int64(len(f.saved)), HouseholdID: params.HouseholdID, WeekStart: params.WeekStart}
	for i, entry := range params.Entries {
		plan.Entries = append(plan.Entries, db.PlanEntry{
			PlanID:   plan.ID,
			Day:      tools.GetString(entry, "day"),
			Meal:     tools.GetString(entry, "meal"),
			Title:    tools.GetString(entry, "title"),
			Position: i,
		})
	}
	return plan, nil
}

func (f *fakeStore) GetHousehold(id int64) (*db.Household, error) {
	return f.household, nil
}

func (f *fakeStore) stages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event.Stage)
	}
	return out
}

func (f *fakeStore) countStage(stage string) int {
	n := 0
	for _, s := range f.stages() {
		if s == stage {
			n++
		}
	}
	return n
}

func testHousehold() *db.Household {
	return &db.Household{
		ID:   1,
		Name: "Test House",
		Members: []db.HouseholdMember{
			{ID: 10, Name: "Ava", Role: "adult", EatsBreakfast: true, EatsLunch: true, EatsDinner: true},
			{ID: 11, Name: "Ben", Role: "adult", EatsBreakfast: false, EatsLunch: true, EatsDinner: true},
			{ID: 12, Name: "Cleo", Role: "kid", EatsBreakfast: true, EatsLunch: true, EatsDinner: true,
				MealSchedule: db.JSONMap{"Mon": []any{"Dinner"}}},
		},
	}
}

func catalogueRunner(t *testing.T, store *fakeStore) *Runner {
	t.Helper()
	workflow, err := NewWorkflow(tools.DefaultRegistry(nil))
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}
	return NewRunner(store, store, store, workflow)
}

func weekStartDate() time.Time {
	return time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
}

func TestRunnerCompletesJob(t *testing.T) {
	job := &db.PlanningJob{
		ID: "job-1", HouseholdID: 1, WeekStart: weekStartDate(), Status: db.JobPending,
		EcoFriendly: true, UseLeftovers: true, Notes: "no cilantro please",
	}
	store := newFakeStore(job, testHousehold())

	catalogueRunner(t, store).Run("job-1")

	final, _ := store.GetJob("job-1")
	if final.Status != db.JobCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.Error)
	}

	stages := store.stages()
	if stages[0] != "started" || stages[len(stages)-1] != "completed" {
		t.Errorf("unexpected stage boundaries: %v", stages)
	}
	if got := store.countStage("planning"); got != 7 {
		t.Errorf("expected 7 planning events, got %d", got)
	}
	if got := store.countStage("planned"); got != 7 {
		t.Errorf("expected 7 planned events, got %d", got)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 saved plan, got %d", len(store.saved))
	}
	params := store.saved[0]
	if len(params.Entries) != 21 {
		t.Errorf("expected 21 entries, got %d", len(params.Entries))
	}

	// eats_* defaults and meal_schedule overrides drive attendance
	if got := params.AttendeeIDs["Mon|Breakfast"]; len(got) != 1 || got[0] != 10 {
		t.Errorf("Mon breakfast should be Ava only, got %v", got)
	}
	if got := params.AttendeeIDs["Mon|Dinner"]; len(got) != 3 {
		t.Errorf("Mon dinner should include everyone, got %v", got)
	}
	if got := params.AttendeeIDs["Tue|Breakfast"]; len(got) != 2 {
		t.Errorf("Cleo's Mon override must not leak into Tue, got %v", got)
	}
	if len(params.AttendeeIDs) != 21 {
		t.Errorf("expected attendance for all 21 slots, got %d", len(params.AttendeeIDs))
	}

	// Job options ride along to the saved plan
	if params.SessionID != "job-job-1-final" {
		t.Errorf("unexpected plan session id %q", params.SessionID)
	}
	if !params.EcoFriendly || !params.UseLeftovers || params.Notes != "no cilantro please" {
		t.Errorf("job options not carried onto the plan: %+v", params)
	}

	// The persisted timeline is the annotated per-agent event list
	events, ok := params.Timeline.([]map[string]any)
	if !ok {
		t.Fatalf("timeline should be annotated event maps, got %T", params.Timeline)
	}
	if len(events) != 7*6 {
		t.Fatalf("expected 42 timeline events (6 agents x 7 days), got %d", len(events))
	}
	for i, event := range events {
		if event["job_id"] != "job-1" {
			t.Fatalf("event %d missing job id: %v", i, event)
		}
		if event["sequence"] != i {
			t.Fatalf("expected sequence %d, got %v", i, event["sequence"])
		}
		if event["origin"] != "primary" {
			t.Fatalf("catalogue run should be all primary, got %v", event["origin"])
		}
		if event["day"] == "" || event["stage"] == "" || event["agent"] == "" {
			t.Fatalf("event %d missing annotation fields: %v", i, event)
		}
	}
}

func TestRunnerCancellationStopsWork(t *testing.T) {
	job := &db.PlanningJob{ID: "job-2", HouseholdID: 1, WeekStart: weekStartDate(), Status: db.JobPending}
	store := newFakeStore(job, testHousehold())
	store.cancelOnStage = "planned" // cancel lands right after the first day

	catalogueRunner(t, store).Run("job-2")

	final, _ := store.GetJob("job-2")
	if final.Status != db.JobCancelled {
		t.Fatalf("expected cancelled, got %s", final.Status)
	}
	if store.countStage("cancelled") != 1 {
		t.Errorf("expected one cancelled event, stages: %v", store.stages())
	}
	if store.countStage("planned") != 1 {
		t.Errorf("work should stop after the cancelled day boundary, stages: %v", store.stages())
	}
	if len(store.saved) != 0 {
		t.Error("cancelled job must not save a plan")
	}
}

// promptAwareGenerator fails single-day prompts and answers whole-week
// prompts with a valid plan, forcing the runner's fallback path
type promptAwareGenerator struct{}

func (g *promptAwareGenerator) Generate(prompt string) (*providers.GenerateResponse, error) {
	if strings.Contains(prompt, "these days: Mon, Tue,") {
		return &providers.GenerateResponse{Text: fullWeekJSON(), Model: "stub"}, nil
	}
	return &providers.GenerateResponse{Text: `{"plan": []}`, Model: "stub"}, nil
}

func fullWeekJSON() string {
	var entries []map[string]any
	for _, day := range tools.DayLabels {
		for _, meal := range tools.MealSlots {
			entries = append(entries, map[string]any{
				"day":     day,
				"meal":    meal,
				"title":   fmt.Sprintf("%s %s dish", day, meal),
				"summary": "Stubbed meal.",
				"steps":   []string{"Cook."},
			})
		}
	}
	data, _ := json.Marshal(map[string]any{"plan": entries})
	return string(data)
}

func TestRunnerFallsBackToWholeWeek(t *testing.T) {
	job := &db.PlanningJob{
		ID: "job-3", HouseholdID: 1, WeekStart: weekStartDate(),
		Days: db.JSONStrings{"Mon"}, Status: db.JobPending,
	}
	store := newFakeStore(job, testHousehold())

	workflow, err := NewWorkflow(tools.DefaultRegistry(&promptAwareGenerator{}))
	if err != nil {
		t.Fatal(err)
	}
	NewRunner(store, store, store, workflow).Run("job-3")

	final, _ := store.GetJob("job-3")
	if final.Status != db.JobCompleted {
		t.Fatalf("expected completed after fallback, got %s (%s)", final.Status, final.Error)
	}
	if store.countStage("fallback") != 1 {
		t.Errorf("expected one fallback event, stages: %v", store.stages())
	}

	var planned *db.PlanningJobEvent
	for i := range store.events {
		if store.events[i].Stage == "planned" {
			planned = &store.events[i]
		}
	}
	if planned == nil || planned.Origin != "fallback" {
		t.Errorf("planned event should carry fallback origin, got %+v", planned)
	}

	if len(store.saved) != 1 || len(store.saved[0].Entries) != 3 {
		t.Fatalf("expected 3 saved entries for Mon, saved: %d", len(store.saved))
	}
	for _, entry := range store.saved[0].Entries {
		if tools.GetString(entry, "day") != "Mon" {
			t.Errorf("fallback week must be trimmed to the requested day, got %v", entry["day"])
		}
	}

	// The primary attempt errored before producing a timeline, so the
	// persisted timeline is the fallback pass alone, tagged as such
	events, ok := store.saved[0].Timeline.([]map[string]any)
	if !ok {
		t.Fatalf("timeline should be annotated event maps, got %T", store.saved[0].Timeline)
	}
	if len(events) != 6 {
		t.Fatalf("expected 6 fallback timeline events, got %d", len(events))
	}
	for i, event := range events {
		if event["sequence"] != i {
			t.Fatalf("expected sequence %d, got %v", i, event["sequence"])
		}
		if event["origin"] != "fallback" {
			t.Fatalf("event %d should have origin fallback, got %v", i, event["origin"])
		}
		if event["day"] != "Mon" {
			t.Fatalf("event %d should be tagged Mon, got %v", i, event["day"])
		}
	}
}

// capturingGenerator records every prompt and always answers with a
// full week so single-day passes succeed
type capturingGenerator struct {
	mu      sync.Mutex
	prompts []string
}

func (g *capturingGenerator) Generate(prompt string) (*providers.GenerateResponse, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return &providers.GenerateResponse{Text: fullWeekJSON(), Model: "stub"}, nil
}

func TestRunnerThreadsJobNotesIntoPrompts(t *testing.T) {
	job := &db.PlanningJob{
		ID: "job-5", HouseholdID: 1, WeekStart: weekStartDate(),
		Days: db.JSONStrings{"Mon"}, Status: db.JobPending,
		Notes: "no cilantro please",
	}
	store := newFakeStore(job, testHousehold())

	gen := &capturingGenerator{}
	workflow, err := NewWorkflow(tools.DefaultRegistry(gen))
	if err != nil {
		t.Fatal(err)
	}
	NewRunner(store, store, store, workflow).Run("job-5")

	final, _ := store.GetJob("job-5")
	if final.Status != db.JobCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.Error)
	}
	if len(gen.prompts) == 0 {
		t.Fatal("expected the generator to be invoked")
	}
	for i, prompt := range gen.prompts {
		if !strings.Contains(prompt, "no cilantro please") {
			t.Errorf("prompt %d should carry the job notes: %q", i, prompt)
		}
	}
}

// failingGenerator always produces an empty plan, so both the per-day
// pass and the whole-week fallback come up empty
type failingGenerator struct{}

func (g *failingGenerator) Generate(prompt string) (*providers.GenerateResponse, error) {
	return &providers.GenerateResponse{Text: `{"plan": []}`, Model: "stub"}, nil
}

func TestRunnerFailsWhenFallbackIsEmpty(t *testing.T) {
	job := &db.PlanningJob{
		ID: "job-4", HouseholdID: 1, WeekStart: weekStartDate(),
		Days: db.JSONStrings{"Mon"}, Status: db.JobPending,
	}
	store := newFakeStore(job, testHousehold())

	workflow, err := NewWorkflow(tools.DefaultRegistry(&failingGenerator{}))
	if err != nil {
		t.Fatal(err)
	}
	NewRunner(store, store, store, workflow).Run("job-4")

	final, _ := store.GetJob("job-4")
	if final.Status != db.JobFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.Error == "" {
		t.Error("failed job should record a reason")
	}
	if store.countStage("fallback") != 1 {
		t.Errorf("expected the fallback to be attempted, stages: %v", store.stages())
	}
	if store.countStage("error") == 0 {
		t.Errorf("expected an error event, stages: %v", store.stages())
	}
	if len(store.saved) != 0 {
		t.Error("failed job must not save a plan")
	}
}
