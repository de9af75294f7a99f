package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"ecofood/db"
	"ecofood/planner"
	"ecofood/tools"
)

// assistant holds the dialog state for the add-a-member conversations
var assistant = planner.NewHouseholdAssistant()

// AssistantMessageRequest is one user turn of the assistant dialog
type AssistantMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// MemberMealsRequest updates a member's meal attendance. Meals is the
// default toggle list; Schedule holds per-day overrides keyed by day
// label with meal-name lists as values. Omitted fields are untouched.
type MemberMealsRequest struct {
	Meals    *[]string            `json:"meals"`
	Schedule *map[string][]string `json:"schedule"`
}

func householdAssistantHandler(c rweb.Context) error {
	householdID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid household id"})
	}

	var req AssistantMessageRequest
	if err := json.Unmarshal(c.Request().Body(), &req); err != nil || req.SessionID == "" {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "session_id is required"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	household, err := database.GetHousehold(householdID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load household"), 500)
	}
	if household == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "household not found"})
	}

	response, err := assistant.HandleMessage(database, householdID, req.SessionID, req.Message)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "assistant failed to process message"), 500)
	}
	if response.Completed {
		logger.Info("Assistant added household member",
			"household_id", householdID, "member", response.Member.Name)
	}
	return c.WriteJSON(response)
}

func addMemberHandler(c rweb.Context) error {
	householdID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid household id"})
	}

	var req MemberRequest
	if err := json.Unmarshal(c.Request().Body(), &req); err != nil || req.Name == "" {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "member name is required"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	household, err := database.GetHousehold(householdID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load household"), 500)
	}
	if household == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "household not found"})
	}

	member, err := database.AddMember(householdID, req.toRow())
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to add household member"), 500)
	}

	logger.F("Added member %s to household %d", member.Name, householdID)
	c.Response().SetStatus(201)
	return c.WriteJSON(member)
}

func removeMemberHandler(c rweb.Context) error {
	householdID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid household id"})
	}
	memberID, err := strconv.ParseInt(c.Request().Param("memberId"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid member id"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	if err := database.DeleteMember(householdID, memberID); err != nil {
		return c.WriteError(serr.Wrap(err, "failed to remove household member"), 500)
	}
	return c.WriteJSON(map[string]bool{"success": true})
}

func updateMemberMealsHandler(c rweb.Context) error {
	householdID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid household id"})
	}
	memberID, err := strconv.ParseInt(c.Request().Param("memberId"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid member id"})
	}

	var req MemberMealsRequest
	if err := json.Unmarshal(c.Request().Body(), &req); err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid request body"})
	}
	if req.Meals == nil && req.Schedule == nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "no fields provided for update"})
	}

	update := db.MemberMealsUpdate{}
	if req.Meals != nil {
		update.Meals = *req.Meals
		update.HasMeals = true
	}
	if req.Schedule != nil {
		schedule := db.JSONMap{}
		for day, meals := range *req.Schedule {
			canonical := tools.CanonicalDay(day)
			if canonical == "" {
				c.Response().SetStatus(400)
				return c.WriteJSON(map[string]string{"error": "unknown day label: " + day})
			}
			names := make([]any, 0, len(meals))
			for _, meal := range meals {
				names = append(names, meal)
			}
			schedule[canonical] = names
		}
		update.Schedule = schedule
		update.HasSchedule = true
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	member, err := database.UpdateMemberMeals(householdID, memberID, update)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to update member meals"), 500)
	}
	if member == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "household member not found"})
	}
	return c.WriteJSON(member)
}
