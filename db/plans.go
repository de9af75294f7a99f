package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rohanthewiz/serr"
)

// PlanEntry is one persisted meal slot. Payload carries the full
// generated entry; AttendeeIDs the members expected at that meal.
type PlanEntry struct {
	ID          int64   `json:"id"`
	PlanID      int64   `json:"plan_id"`
	Day         string  `json:"day"`
	Meal        string  `json:"meal"`
	Title       string  `json:"title"`
	Payload     JSONMap `json:"payload"`
	AttendeeIDs []int64 `json:"attendee_ids"`
	Position    int     `json:"position"`
}

// MealPlan is a saved week for one household. SessionID ties the plan
// back to the generation run that produced it.
type MealPlan struct {
	ID           int64           `json:"id"`
	HouseholdID  int64           `json:"household_id"`
	WeekStart    time.Time       `json:"week_start"`
	SessionID    string          `json:"session_id,omitempty"`
	EcoFriendly  bool            `json:"eco_friendly"`
	UseLeftovers bool            `json:"use_leftovers"`
	Notes        string          `json:"notes,omitempty"`
	Timeline     json.RawMessage `json:"timeline,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Entries      []PlanEntry     `json:"entries"`
}

// SavePlanParams carries a generated week ready for persistence.
// Entries are the generated slot maps; AttendeeIDs is keyed
// "Day|Meal". Slots whose attendee list is present but empty are
// dropped, nobody is home for them.
type SavePlanParams struct {
	HouseholdID  int64
	WeekStart    time.Time
	SessionID    string
	EcoFriendly  bool
	UseLeftovers bool
	Notes        string
	Entries      []map[string]any
	Timeline     any
	AttendeeIDs  map[string][]int64
}

// SavePlan replaces the household's plan for the week: any existing
// plan for the same household and week start is deleted first, then
// the new entries are inserted in order.
func (db *DB) SavePlan(params SavePlanParams) (*MealPlan, error) {
	weekStart := params.WeekStart.Format("2006-01-02")

	var planID int64
	err := db.Transaction(func(tx *sql.Tx) error {
		var existingID int64
		err := tx.QueryRow(
			`SELECT id FROM meal_plans WHERE household_id = ? AND week_start = ?`,
			params.HouseholdID, weekStart,
		).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return serr.Wrap(err, "failed to check for existing plan")
		}
		if err == nil {
			if _, err := tx.Exec(`DELETE FROM plan_entries WHERE plan_id = ?`, existingID); err != nil {
				return serr.Wrap(err, "failed to delete existing plan entries")
			}
			if _, err := tx.Exec(`DELETE FROM meal_plans WHERE id = ?`, existingID); err != nil {
				return serr.Wrap(err, "failed to delete existing plan")
			}
		}

		err = tx.QueryRow(
			`INSERT INTO meal_plans (household_id, week_start, session_id, eco_friendly, use_leftovers, notes, timeline)
			 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			params.HouseholdID, weekStart, params.SessionID, params.EcoFriendly, params.UseLeftovers,
			params.Notes, mustJSON(params.Timeline),
		).Scan(&planID)
		if err != nil {
			return serr.Wrap(err, "failed to insert plan")
		}

		position := 0
		for _, entry := range params.Entries {
			day, _ := entry["day"].(string)
			meal, _ := entry["meal"].(string)
			title, _ := entry["title"].(string)

			attendees, tracked := params.AttendeeIDs[day+"|"+meal]
			if tracked && len(attendees) == 0 {
				continue
			}

			_, err := tx.Exec(
				`INSERT INTO plan_entries (plan_id, day, meal, title, payload, attendee_ids, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				planID, day, meal, title, mustJSON(entry), mustJSON(attendees), position,
			)
			if err != nil {
				return serr.Wrap(err, "failed to insert plan entry", "day", day, "meal", meal)
			}
			position++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return db.GetPlanByID(planID)
}

// GetPlanByID loads a plan with its entries in position order, or nil
func (db *DB) GetPlanByID(id int64) (*MealPlan, error) {
	plan := &MealPlan{ID: id}
	var sessionID, notes, timeline sql.NullString
	var weekStart time.Time
	err := db.QueryRow(
		`SELECT household_id, week_start, session_id, eco_friendly, use_leftovers, notes, timeline, created_at
		 FROM meal_plans WHERE id = ?`, id,
	).Scan(&plan.HouseholdID, &weekStart, &sessionID, &plan.EcoFriendly, &plan.UseLeftovers,
		&notes, &timeline, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to load plan")
	}
	plan.WeekStart = weekStart
	plan.SessionID = sessionID.String
	plan.Notes = notes.String
	if timeline.Valid {
		plan.Timeline = json.RawMessage(timeline.String)
	}

	entries, err := db.loadEntries(id)
	if err != nil {
		return nil, err
	}
	plan.Entries = entries
	return plan, nil
}

// GetPlanForWeek loads the household's plan for a week start, or nil
func (db *DB) GetPlanForWeek(householdID int64, weekStart time.Time) (*MealPlan, error) {
	var id int64
	err := db.QueryRow(
		`SELECT id FROM meal_plans WHERE household_id = ? AND week_start = ?`,
		householdID, weekStart.Format("2006-01-02"),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to look up plan for week")
	}
	return db.GetPlanByID(id)
}

// ListPlans returns plan headers for a household, newest week first
func (db *DB) ListPlans(householdID int64) ([]MealPlan, error) {
	rows, err := db.Query(
		`SELECT id, week_start, created_at FROM meal_plans WHERE household_id = ? ORDER BY week_start DESC`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		plan := MealPlan{HouseholdID: householdID}
		if err := rows.Scan(&plan.ID, &plan.WeekStart, &plan.CreatedAt); err != nil {
			return nil, serr.Wrap(err, "failed to scan plan")
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (db *DB) loadEntries(planID int64) ([]PlanEntry, error) {
	rows, err := db.Query(
		`SELECT id, day, meal, title, payload, attendee_ids, position
		 FROM plan_entries WHERE plan_id = ? ORDER BY position`, planID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PlanEntry
	for rows.Next() {
		entry := PlanEntry{PlanID: planID}
		var attendees sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Day, &entry.Meal, &entry.Title,
			&entry.Payload, &attendees, &entry.Position); err != nil {
			return nil, serr.Wrap(err, "failed to scan plan entry")
		}
		if attendees.Valid && attendees.String != "" {
			if err := json.Unmarshal([]byte(attendees.String), &entry.AttendeeIDs); err != nil {
				return nil, serr.Wrap(err, "failed to decode attendee ids")
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
