package handlers

import (
	"strconv"
	"time"

	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"ecofood/db"
)

func listPlansHandler(c rweb.Context) error {
	householdID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid household id"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	plans, err := database.ListPlans(householdID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to list plans"), 500)
	}

	return c.WriteJSON(plans)
}

func getWeekPlanHandler(c rweb.Context) error {
	householdID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid household id"})
	}

	weekStart, err := time.Parse("2006-01-02", c.Request().QueryParam("week"))
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "week must be YYYY-MM-DD"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	plan, err := database.GetPlanForWeek(householdID, weekStart)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load plan"), 500)
	}
	if plan == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "no plan for that week"})
	}

	return c.WriteJSON(plan)
}

func getPlanHandler(c rweb.Context) error {
	planID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid plan id"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	plan, err := database.GetPlanByID(planID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load plan"), 500)
	}
	if plan == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "plan not found"})
	}

	return c.WriteJSON(plan)
}
