package handlers

import (
	"github.com/rohanthewiz/rweb"

	"ecofood/planner"
)

// runner executes planning jobs launched from the API
var runner *planner.Runner

// SetupRoutes configures all HTTP routes for the server
func SetupRoutes(s *rweb.Server, jobRunner *planner.Runner) {
	runner = jobRunner

	// Root endpoint - serves the status UI
	s.Get("/", rootHandler)

	// Household endpoints
	s.Get("/api/households", listHouseholdsHandler)
	s.Post("/api/households", createHouseholdHandler)
	s.Get("/api/households/:id", getHouseholdHandler)

	// Roster management, including the guided add-a-member dialog
	s.Post("/api/households/:id/members", addMemberHandler)
	s.Delete("/api/households/:id/members/:memberId", removeMemberHandler)
	s.Patch("/api/households/:id/members/:memberId/meals", updateMemberMealsHandler)
	s.Post("/api/households/:id/assistant", householdAssistantHandler)

	// Kitchen tool endpoints
	s.Get("/api/households/:id/kitchen", listKitchenToolsHandler)
	s.Post("/api/households/:id/kitchen", addKitchenToolHandler)
	s.Patch("/api/households/:id/kitchen/:toolId", updateKitchenToolHandler)
	s.Delete("/api/households/:id/kitchen/:toolId", deleteKitchenToolHandler)

	// Meal plan endpoints
	s.Get("/api/households/:id/plans", listPlansHandler)
	s.Get("/api/households/:id/plans/week", getWeekPlanHandler)
	s.Get("/api/plans/:id", getPlanHandler)

	// Planning job endpoints
	s.Post("/api/plan-jobs", createPlanJobHandler)
	s.Get("/api/plan-jobs/:id", getPlanJobHandler)
	s.Delete("/api/plan-jobs/:id", cancelPlanJobHandler)

	// SSE endpoint for streaming a job's progress events
	s.Get("/api/plan-jobs/:id/events/stream",
		func(c rweb.Context) error {
			clientChan := make(chan any, 16)
			go pumpJobEvents(c, clientChan)
			s.SetupSSE(c, clientChan, "")
			return nil
		},
	)
}

// rootHandler serves the status UI
func rootHandler(c rweb.Context) error {
	return UIHandler(c)
}
