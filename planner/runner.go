package planner

import (
	"fmt"
	"strings"

	"github.com/rohanthewiz/logger"

	"ecofood/db"
	"ecofood/platform/shutdown"
	"ecofood/tools"
)

// JobStore is the runner's view of job persistence
type JobStore interface {
	GetJob(id string) (*db.PlanningJob, error)
	MarkJobRunning(id string) error
	MarkJobCompleted(id string) error
	MarkJobFailed(id string, reason string) error
	AddJobEvent(event db.PlanningJobEvent) (*db.PlanningJobEvent, error)
}

// PlanStore persists finished weeks
type PlanStore interface {
	SavePlan(params db.SavePlanParams) (*db.MealPlan, error)
}

// HouseholdStore loads the household a job plans for
type HouseholdStore interface {
	GetHousehold(id int64) (*db.Household, error)
}

// Runner executes planning jobs to completion. Each job plans its
// requested days one at a time, falling back to a whole-week pass when
// a single day comes back empty, and checks for cancellation at every
// day boundary. A job never stays in running: any exit path marks it
// completed, failed, or cancelled first.
type Runner struct {
	jobs       JobStore
	plans      PlanStore
	households HouseholdStore
	workflow   *Workflow
}

// NewRunner wires the runner against its stores and workflow
func NewRunner(jobs JobStore, plans PlanStore, households HouseholdStore, workflow *Workflow) *Runner {
	return &Runner{jobs: jobs, plans: plans, households: households, workflow: workflow}
}

// Run drives one job from pending to a terminal status. Intended to be
// launched on its own goroutine; it logs rather than returns errors.
func (r *Runner) Run(jobID string) {
	defer func() {
		if p := recover(); p != nil {
			logger.LogErr(fmt.Errorf("%v", p), "planning job panicked", "job_id", jobID)
			r.fail(jobID, fmt.Sprintf("internal error: %v", p))
		}
	}()

	job, err := r.jobs.GetJob(jobID)
	if err != nil || job == nil {
		logger.Warn("Planning job not found at start", "job_id", jobID)
		return
	}

	if err := r.jobs.MarkJobRunning(jobID); err != nil {
		logger.LogErr(err, "failed to mark job running", "job_id", jobID)
		return
	}

	household, err := r.households.GetHousehold(job.HouseholdID)
	if err != nil {
		r.fail(jobID, "failed to load household: "+err.Error())
		return
	}
	if household == nil {
		r.fail(jobID, fmt.Sprintf("household %d not found", job.HouseholdID))
		return
	}

	days := targetDays(job.Days)
	r.emit(db.PlanningJobEvent{
		JobID: jobID,
		Stage: "started",
		Payload: db.JSONMap{
			"household_id": household.ID,
			"week_start":   job.WeekStart.Format("2006-01-02"),
			"days":         days,
		},
	})

	members := membersFromRoster(household.Members)
	pantry := pantryFromRows(household.PantryItems)
	kitchenTools := toolsFromRows(household.KitchenTools)
	attendees := attendeeMap(household.Members, days)

	var allEntries []map[string]any
	var timeline []map[string]any
	sequence := 0

	for _, day := range days {
		if shutdown.InProgress() {
			r.fail(jobID, "server shutting down")
			return
		}

		current, err := r.jobs.GetJob(jobID)
		if err != nil || current == nil {
			r.fail(jobID, "job record disappeared mid-run")
			return
		}
		if current.Status == db.JobCancelled {
			r.emit(db.PlanningJobEvent{JobID: jobID, Stage: "cancelled", Day: day})
			logger.Info("Planning job cancelled", "job_id", jobID, "at_day", day)
			return
		}
		if current.Terminal() {
			return
		}

		r.emit(db.PlanningJobEvent{JobID: jobID, Stage: "planning", Day: day})

		request := MealPlanRequest{
			SessionID:    fmt.Sprintf("job-%s-%s", jobID, day),
			Members:      members,
			PantryItems:  pantry,
			KitchenTools: kitchenTools,
			Notes:        job.Notes,
			HouseholdID:  household.ID,
			WeekStart:    job.WeekStart,
			EcoFriendly:  job.EcoFriendly,
			UseLeftovers: job.UseLeftovers,
			Days:         []string{day},
		}

		result, err := r.workflow.Generate(request)
		origin := "primary"
		var dayEntries []map[string]any
		var segments []map[string]any
		if err == nil {
			dayEntries = entriesForDay(result, day)
			segments = annotateTimeline(result.Timeline, jobID, day, sequence, "primary")
			sequence += len(result.Timeline)
		}

		if err != nil || len(dayEntries) == 0 {
			if err != nil && !IsPlanGeneration(err) {
				r.emit(db.PlanningJobEvent{
					JobID: jobID, Stage: "error", Day: day,
					Payload: db.JSONMap{"reason": err.Error()},
				})
				r.fail(jobID, err.Error())
				return
			}

			reason := "empty plan for day"
			if err != nil {
				reason = err.Error()
			}
			r.emit(db.PlanningJobEvent{
				JobID: jobID, Stage: "fallback", Day: day,
				Payload: db.JSONMap{"reason": reason},
			})

			weekRequest := request
			weekRequest.SessionID = fmt.Sprintf("job-%s-%s-fallback", jobID, day)
			weekRequest.Days = nil
			weekResult, weekErr := r.workflow.Generate(weekRequest)
			if weekErr != nil {
				r.fail(jobID, weekErr.Error())
				return
			}
			segments = append(segments, annotateTimeline(weekResult.Timeline, jobID, day, sequence, "fallback")...)
			sequence += len(weekResult.Timeline)
			dayEntries = entriesForDay(weekResult, day)
			if len(dayEntries) == 0 {
				r.fail(jobID, fmt.Sprintf("No meals planned for %s", day))
				return
			}
			origin = "fallback"
		}

		r.emit(db.PlanningJobEvent{
			JobID: jobID, Stage: "planned", Day: day, Origin: origin,
			Payload: db.JSONMap{"entries": dayEntries, "origin": origin},
		})

		allEntries = append(allEntries, dayEntries...)
		timeline = append(timeline, segments...)
	}

	final, err := r.jobs.GetJob(jobID)
	if err != nil || final == nil {
		r.fail(jobID, "job record disappeared before save")
		return
	}
	if final.Status == db.JobCancelled {
		r.emit(db.PlanningJobEvent{JobID: jobID, Stage: "cancelled"})
		return
	}

	plan, err := r.plans.SavePlan(db.SavePlanParams{
		HouseholdID:  household.ID,
		WeekStart:    job.WeekStart,
		SessionID:    fmt.Sprintf("job-%s-final", jobID),
		EcoFriendly:  job.EcoFriendly,
		UseLeftovers: job.UseLeftovers,
		Notes:        job.Notes,
		Entries:      allEntries,
		Timeline:     timeline,
		AttendeeIDs:  attendees,
	})
	if err != nil {
		r.fail(jobID, "failed to save plan: "+err.Error())
		return
	}

	if err := r.jobs.MarkJobCompleted(jobID); err != nil {
		logger.LogErr(err, "failed to mark job completed", "job_id", jobID)
		return
	}
	r.emit(db.PlanningJobEvent{
		JobID: jobID, Stage: "completed",
		Payload: db.JSONMap{"entry_count": len(plan.Entries), "plan_id": plan.ID},
	})
	logger.Info("Planning job completed", "job_id", jobID, "entries", len(plan.Entries))
}

func (r *Runner) emit(event db.PlanningJobEvent) {
	if _, err := r.jobs.AddJobEvent(event); err != nil {
		logger.LogErr(err, "failed to record job event", "job_id", event.JobID, "stage", event.Stage)
	}
}

func (r *Runner) fail(jobID, reason string) {
	r.emit(db.PlanningJobEvent{
		JobID: jobID, Stage: "error",
		Payload: db.JSONMap{"reason": reason},
	})
	if err := r.jobs.MarkJobFailed(jobID, reason); err != nil {
		logger.LogErr(err, "failed to mark job failed", "job_id", jobID)
	}
}

// targetDays canonicalizes a job's requested days; empty means Mon..Sun
func targetDays(days []string) []string {
	return canonicalDays(days)
}

// entriesForDay pulls one day's entries out of a workflow result
func entriesForDay(result *GenerateResult, day string) []map[string]any {
	if result == nil || result.FinalPlan == nil {
		return nil
	}
	plan, _ := result.FinalPlan["plan"].([]map[string]any)
	var out []map[string]any
	for _, entry := range plan {
		if tools.GetString(entry, "day") == day {
			out = append(out, entry)
		}
	}
	return out
}

// annotateTimeline tags one generation pass's agent results with the
// job, day, running sequence number, and origin they ran under. The
// annotated records are what gets persisted alongside the plan.
func annotateTimeline(results []AgentResult, jobID, day string, start int, origin string) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for offset, result := range results {
		out = append(out, map[string]any{
			"agent":    result.Agent,
			"stage":    result.Stage,
			"payload":  result.Payload,
			"job_id":   jobID,
			"day":      day,
			"sequence": start + offset,
			"origin":   origin,
		})
	}
	return out
}

func membersFromRoster(rows []db.HouseholdMember) []tools.Member {
	out := make([]tools.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, tools.Member{
			Name:      row.Name,
			Role:      row.Role,
			Allergens: row.Allergens,
			Likes:     row.Likes,
		})
	}
	return out
}

func pantryFromRows(rows []db.PantryItem) []tools.PantryItem {
	out := make([]tools.PantryItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, tools.PantryItem{
			Name:            row.Name,
			Quantity:        row.Quantity,
			Unit:            row.Unit,
			DaysUntilExpiry: row.DaysUntilExpiry,
		})
	}
	return out
}

func toolsFromRows(rows []db.KitchenTool) []tools.KitchenTool {
	out := make([]tools.KitchenTool, 0, len(rows))
	for _, row := range rows {
		out = append(out, tools.KitchenTool{
			Label:    row.Label,
			Category: row.Category,
			Quantity: row.Quantity,
		})
	}
	return out
}

// attendeeMap resolves who is expected at each day and meal, keyed
// "Day|Meal". The member's eats_* flags are the default; a day entry
// in meal_schedule replaces them with an explicit meal list for that
// day. Slots every member skips end up with an empty, non-nil list.
func attendeeMap(members []db.HouseholdMember, days []string) map[string][]int64 {
	out := make(map[string][]int64, len(days)*len(tools.MealSlots))
	for _, day := range days {
		for _, slot := range tools.MealSlots {
			key := day + "|" + slot
			ids := []int64{}
			for _, member := range members {
				if memberAttends(member, day, slot) {
					ids = append(ids, member.ID)
				}
			}
			out[key] = ids
		}
	}
	return out
}

func memberAttends(member db.HouseholdMember, day, slot string) bool {
	if override, ok := member.MealSchedule[day]; ok {
		meals, ok := override.([]any)
		if !ok {
			return false
		}
		for _, meal := range meals {
			if name, ok := meal.(string); ok && strings.EqualFold(name, slot) {
				return true
			}
		}
		return false
	}

	switch slot {
	case "Breakfast":
		return member.EatsBreakfast
	case "Lunch":
		return member.EatsLunch
	case "Dinner":
		return member.EatsDinner
	}
	return false
}
