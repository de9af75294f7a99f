package db

import (
	"database/sql"
	"strconv"

	"github.com/rohanthewiz/serr"
)

// KitchenToolUpdate holds the fields a tool update may change.
// Nil fields are left as they are.
type KitchenToolUpdate struct {
	Label    *string
	Category *string
	Quantity *int
}

// ListKitchenTools returns a household's tools ordered by id
func (db *DB) ListKitchenTools(householdID int64) ([]KitchenTool, error) {
	rows, err := db.Query(
		`SELECT id, label, category, quantity FROM kitchen_tools WHERE household_id = ? ORDER BY id`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []KitchenTool
	for rows.Next() {
		tool := KitchenTool{HouseholdID: householdID}
		var category sql.NullString
		if err := rows.Scan(&tool.ID, &tool.Label, &category, &tool.Quantity); err != nil {
			return nil, serr.Wrap(err, "failed to scan kitchen tool")
		}
		tool.Category = category.String
		tools = append(tools, tool)
	}
	return tools, nil
}

// AddKitchenTool inserts one tool and returns the stored row
func (db *DB) AddKitchenTool(householdID int64, tool KitchenTool) (*KitchenTool, error) {
	if tool.Quantity == 0 {
		tool.Quantity = 1
	}
	err := db.QueryRow(
		`INSERT INTO kitchen_tools (household_id, label, category, quantity) VALUES (?, ?, ?, ?) RETURNING id`,
		householdID, tool.Label, tool.Category, tool.Quantity,
	).Scan(&tool.ID)
	if err != nil {
		return nil, serr.Wrap(err, "failed to insert kitchen tool", "label", tool.Label)
	}
	tool.HouseholdID = householdID
	return &tool, nil
}

// UpdateKitchenTool applies the provided fields to a tool and returns
// it, or nil when the tool does not belong to the household
func (db *DB) UpdateKitchenTool(householdID, toolID int64, update KitchenToolUpdate) (*KitchenTool, error) {
	tool := &KitchenTool{ID: toolID, HouseholdID: householdID}
	var category sql.NullString
	err := db.QueryRow(
		`SELECT label, category, quantity FROM kitchen_tools WHERE id = ? AND household_id = ?`,
		toolID, householdID,
	).Scan(&tool.Label, &category, &tool.Quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to load kitchen tool")
	}
	tool.Category = category.String

	if update.Label != nil {
		tool.Label = *update.Label
	}
	if update.Category != nil {
		tool.Category = *update.Category
	}
	if update.Quantity != nil {
		tool.Quantity = *update.Quantity
	}

	_, err = db.Exec(
		`UPDATE kitchen_tools SET label = ?, category = ?, quantity = ? WHERE id = ? AND household_id = ?`,
		tool.Label, tool.Category, tool.Quantity, toolID, householdID,
	)
	if err != nil {
		return nil, serr.Wrap(err, "failed to update kitchen tool", "tool_id", strconv.FormatInt(toolID, 10))
	}
	return tool, nil
}

// DeleteKitchenTool removes a tool. Deleting a missing tool is not an
// error.
func (db *DB) DeleteKitchenTool(householdID, toolID int64) error {
	_, err := db.Exec(
		`DELETE FROM kitchen_tools WHERE id = ? AND household_id = ?`,
		toolID, householdID,
	)
	return err
}
