package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"ecofood/db"
)

// KitchenToolUpdateRequest carries the optional fields of a tool update
type KitchenToolUpdateRequest struct {
	Label    *string `json:"label"`
	Category *string `json:"category"`
	Quantity *int    `json:"quantity"`
}

func listKitchenToolsHandler(c rweb.Context) error {
	householdID, database, done := kitchenHousehold(c)
	if done {
		return nil
	}

	tools, err := database.ListKitchenTools(householdID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to list kitchen tools"), 500)
	}
	if tools == nil {
		tools = []db.KitchenTool{}
	}
	return c.WriteJSON(tools)
}

func addKitchenToolHandler(c rweb.Context) error {
	householdID, database, done := kitchenHousehold(c)
	if done {
		return nil
	}

	var tool db.KitchenTool
	if err := json.Unmarshal(c.Request().Body(), &tool); err != nil || tool.Label == "" {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "tool label is required"})
	}

	saved, err := database.AddKitchenTool(householdID, tool)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to add kitchen tool"), 500)
	}
	c.Response().SetStatus(201)
	return c.WriteJSON(saved)
}

func updateKitchenToolHandler(c rweb.Context) error {
	householdID, database, done := kitchenHousehold(c)
	if done {
		return nil
	}
	toolID, err := strconv.ParseInt(c.Request().Param("toolId"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid tool id"})
	}

	var req KitchenToolUpdateRequest
	if err := json.Unmarshal(c.Request().Body(), &req); err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid request body"})
	}
	if req.Label == nil && req.Category == nil && req.Quantity == nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "no fields provided for update"})
	}

	tool, err := database.UpdateKitchenTool(householdID, toolID, db.KitchenToolUpdate{
		Label:    req.Label,
		Category: req.Category,
		Quantity: req.Quantity,
	})
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to update kitchen tool"), 500)
	}
	if tool == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "kitchen tool not found"})
	}
	return c.WriteJSON(tool)
}

func deleteKitchenToolHandler(c rweb.Context) error {
	householdID, database, done := kitchenHousehold(c)
	if done {
		return nil
	}
	toolID, err := strconv.ParseInt(c.Request().Param("toolId"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid tool id"})
	}

	if err := database.DeleteKitchenTool(householdID, toolID); err != nil {
		return c.WriteError(serr.Wrap(err, "failed to delete kitchen tool"), 500)
	}
	return c.WriteJSON(map[string]bool{"success": true})
}

// kitchenHousehold parses the household id, checks the household
// exists, and writes the error response itself when it does not.
// done is true when a response has already been written.
func kitchenHousehold(c rweb.Context) (householdID int64, database *db.DB, done bool) {
	householdID, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		c.WriteJSON(map[string]string{"error": "invalid household id"})
		return 0, nil, true
	}

	database, err = db.GetDB()
	if err != nil {
		c.WriteError(serr.Wrap(err, "failed to get database"), 500)
		return 0, nil, true
	}

	household, err := database.GetHousehold(householdID)
	if err != nil {
		c.WriteError(serr.Wrap(err, "failed to load household"), 500)
		return 0, nil, true
	}
	if household == nil {
		c.Response().SetStatus(404)
		c.WriteJSON(map[string]string{"error": "household not found"})
		return 0, nil, true
	}
	return householdID, database, false
}
