package planner

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"ecofood/tools"
)

// MealPlanRequest carries everything a single generation pass needs.
// HouseholdID and WeekStart only matter to callers that persist the
// result; the workflow itself ignores them.
type MealPlanRequest struct {
	SessionID    string
	Members      []tools.Member
	PantryItems  []tools.PantryItem
	KitchenTools []tools.KitchenTool
	Notes        string
	HouseholdID  int64
	WeekStart    time.Time
	EcoFriendly  bool
	UseLeftovers bool
	Days         []string // nil means the full week
}

// GenerateResult is the workflow outcome: the ordered timeline of
// agent results, the merged final plan, and a context snapshot.
type GenerateResult struct {
	SessionID string           `json:"session_id"`
	Timeline  []AgentResult    `json:"timeline"`
	FinalPlan map[string]any   `json:"final_plan"`
	Context   map[string]any   `json:"context"`
}

// Workflow wires the agents into the fixed pipeline:
// profile -> architect -> curation -> {nutrition || pantry} -> synthesis.
type Workflow struct {
	profiler  *HouseholdProfilerAgent
	architect *MealArchitectAgent
	curator   *ChefCurationAgent
	nutrition *NutritionReviewAgent
	pantry    *PantryReviewAgent
	synth     *PlanSynthesisAgent
}

// NewWorkflow constructs every agent up front so that tool
// configuration problems surface here rather than mid-run.
func NewWorkflow(reg *tools.Registry) (*Workflow, error) {
	profiler, err := NewHouseholdProfilerAgent(reg)
	if err != nil {
		return nil, err
	}
	architect, err := NewMealArchitectAgent(reg)
	if err != nil {
		return nil, err
	}
	curator, err := NewChefCurationAgent(reg)
	if err != nil {
		return nil, err
	}
	nutrition, err := NewNutritionReviewAgent(reg)
	if err != nil {
		return nil, err
	}
	pantry, err := NewPantryReviewAgent(reg)
	if err != nil {
		return nil, err
	}
	synth, err := NewPlanSynthesisAgent(reg)
	if err != nil {
		return nil, err
	}
	return &Workflow{
		profiler:  profiler,
		architect: architect,
		curator:   curator,
		nutrition: nutrition,
		pantry:    pantry,
		synth:     synth,
	}, nil
}

// Generate runs the full pipeline for one request. Parallel review
// results land in the timeline in completion order; everything else
// is strictly sequential.
func (w *Workflow) Generate(req MealPlanRequest) (*GenerateResult, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx := NewSessionContext(sessionID)
	ctx.Set("kitchen_tools", req.KitchenTools)

	started := time.Now()
	var timeline []AgentResult

	profileResult, err := w.profiler.Run(ctx, req.Members)
	if err != nil {
		return nil, serr.Wrap(err, "household profiling failed")
	}
	timeline = append(timeline, profileResult)
	profile, _ := profileResult.Payload["profile"].(tools.HouseholdProfile)

	architectResult, err := w.architect.Run(ctx, ArchitectInput{
		Profile:      profile,
		Notes:        req.Notes,
		EcoFriendly:  req.EcoFriendly,
		KitchenTools: req.KitchenTools,
		Days:         req.Days,
	})
	if err != nil {
		return nil, err
	}
	timeline = append(timeline, architectResult)
	candidate, _ := architectResult.Payload["plan"].([]map[string]any)

	curationResult, err := w.curator.Run(ctx, candidate, profile, req.Notes)
	if err != nil {
		return nil, serr.Wrap(err, "chef curation failed")
	}
	timeline = append(timeline, curationResult)
	curated, _ := curationResult.Payload["plan"].([]map[string]any)

	reviews, err := w.runReviews(ctx, curated, req)
	if err != nil {
		return nil, err
	}
	timeline = append(timeline, reviews...)

	var nutritionReview, pantryReview map[string]any
	for _, review := range reviews {
		switch review.Stage {
		case "plan.review.nutrition":
			nutritionReview = review.Payload
		case "plan.review.pantry":
			pantryReview = review.Payload
		}
	}

	synthResult, err := w.synth.Run(ctx, SynthesisInput{
		Plan:            curated,
		NutritionReview: nutritionReview,
		PantryReview:    pantryReview,
		WeekStart:       req.WeekStart,
	})
	if err != nil {
		return nil, serr.Wrap(err, "plan synthesis failed")
	}
	timeline = append(timeline, synthResult)

	logger.Info("Meal plan workflow complete",
		"session_id", sessionID,
		"entries", len(curated),
		"stages", len(timeline),
		"elapsed", time.Since(started).String(),
	)

	return &GenerateResult{
		SessionID: sessionID,
		Timeline:  timeline,
		FinalPlan: synthResult.Payload,
		Context:   ctx.Snapshot(),
	}, nil
}

// runReviews fans the two review agents out on goroutines and gathers
// their results in completion order. The first error wins; remaining
// results are drained so no goroutine blocks on send.
func (w *Workflow) runReviews(ctx *SessionContext, plan []map[string]any, req MealPlanRequest) ([]AgentResult, error) {
	type outcome struct {
		result AgentResult
		err    error
	}

	results := make(chan outcome, 2)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		result, err := w.nutrition.Run(ctx, plan)
		results <- outcome{result: result, err: err}
	}()
	go func() {
		defer wg.Done()
		result, err := w.pantry.Run(ctx, req.PantryItems, plan, req.UseLeftovers)
		results <- outcome{result: result, err: err}
	}()

	wg.Wait()
	close(results)

	var gathered []AgentResult
	var firstErr error
	for out := range results {
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		gathered = append(gathered, out.result)
	}
	if firstErr != nil {
		return nil, serr.Wrap(firstErr, "parallel review failed")
	}
	return gathered, nil
}
