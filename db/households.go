package db

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rohanthewiz/serr"
)

// JSONMap is a helper type for JSON columns
type JSONMap map[string]interface{}

// Scan implements sql.Scanner interface for JSONMap
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
}

// Value implements driver.Valuer interface for JSONMap
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// JSONStrings is a helper type for JSON string-array columns
type JSONStrings []string

// Scan implements sql.Scanner interface for JSONStrings
func (s *JSONStrings) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
}

// Value implements driver.Valuer interface for JSONStrings
func (s JSONStrings) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// HouseholdMember is one person on a household's roster. MealSchedule
// holds per-day overrides of the eats_* defaults, keyed by day label
// with meal-name lists as values.
type HouseholdMember struct {
	ID            int64       `json:"id"`
	HouseholdID   int64       `json:"household_id"`
	Name          string      `json:"name"`
	Role          string      `json:"role,omitempty"`
	Allergens     JSONStrings `json:"allergens,omitempty"`
	Likes         JSONStrings `json:"likes,omitempty"`
	EatsBreakfast bool        `json:"eats_breakfast"`
	EatsLunch     bool        `json:"eats_lunch"`
	EatsDinner    bool        `json:"eats_dinner"`
	MealSchedule  JSONMap     `json:"meal_schedule,omitempty"`
}

// KitchenTool is a household appliance or utensil
type KitchenTool struct {
	ID          int64  `json:"id"`
	HouseholdID int64  `json:"household_id"`
	Label       string `json:"label"`
	Category    string `json:"category,omitempty"`
	Quantity    int    `json:"quantity"`
}

// PantryItem is a stocked ingredient, optionally with an expiry horizon
type PantryItem struct {
	ID              int64   `json:"id"`
	HouseholdID     int64   `json:"household_id"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit,omitempty"`
	DaysUntilExpiry *int    `json:"days_until_expiry,omitempty"`
}

// Household is the aggregate root: the roster plus kitchen and pantry
type Household struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	EcoFriendly  bool              `json:"eco_friendly"`
	UseLeftovers bool              `json:"use_leftovers"`
	CreatedAt    time.Time         `json:"created_at"`
	Members      []HouseholdMember `json:"members"`
	KitchenTools []KitchenTool     `json:"kitchen_tools"`
	PantryItems  []PantryItem      `json:"pantry_items"`
}

// HouseholdParams carries everything needed to create a household
type HouseholdParams struct {
	Name         string
	EcoFriendly  bool
	UseLeftovers bool
	Members      []HouseholdMember
	KitchenTools []KitchenTool
	PantryItems  []PantryItem
}

// CreateHousehold inserts the household and its roster atomically
func (db *DB) CreateHousehold(params HouseholdParams) (*Household, error) {
	if params.Name == "" {
		params.Name = "My Household"
	}

	var householdID int64
	err := db.Transaction(func(tx *sql.Tx) error {
		err := tx.QueryRow(
			`INSERT INTO households (name, eco_friendly, use_leftovers) VALUES (?, ?, ?) RETURNING id`,
			params.Name, params.EcoFriendly, params.UseLeftovers,
		).Scan(&householdID)
		if err != nil {
			return serr.Wrap(err, "failed to insert household")
		}

		for _, member := range params.Members {
			_, err := tx.Exec(
				`INSERT INTO household_members
					(household_id, name, role, allergens, likes, eats_breakfast, eats_lunch, eats_dinner, meal_schedule)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				householdID, member.Name, member.Role,
				mustJSON(member.Allergens), mustJSON(member.Likes),
				member.EatsBreakfast, member.EatsLunch, member.EatsDinner,
				mustJSON(member.MealSchedule),
			)
			if err != nil {
				return serr.Wrap(err, "failed to insert household member", "member", member.Name)
			}
		}

		for _, tool := range params.KitchenTools {
			quantity := tool.Quantity
			if quantity == 0 {
				quantity = 1
			}
			_, err := tx.Exec(
				`INSERT INTO kitchen_tools (household_id, label, category, quantity) VALUES (?, ?, ?, ?)`,
				householdID, tool.Label, tool.Category, quantity,
			)
			if err != nil {
				return serr.Wrap(err, "failed to insert kitchen tool", "label", tool.Label)
			}
		}

		for _, item := range params.PantryItems {
			_, err := tx.Exec(
				`INSERT INTO pantry_items (household_id, name, quantity, unit, days_until_expiry) VALUES (?, ?, ?, ?, ?)`,
				householdID, item.Name, item.Quantity, item.Unit, item.DaysUntilExpiry,
			)
			if err != nil {
				return serr.Wrap(err, "failed to insert pantry item", "name", item.Name)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return db.GetHousehold(householdID)
}

// GetHousehold loads a household with its full roster, or nil when absent
func (db *DB) GetHousehold(id int64) (*Household, error) {
	household := &Household{ID: id}
	err := db.QueryRow(
		`SELECT name, eco_friendly, use_leftovers, created_at FROM households WHERE id = ?`, id,
	).Scan(&household.Name, &household.EcoFriendly, &household.UseLeftovers, &household.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to load household")
	}

	rows, err := db.Query(
		`SELECT id, name, role, allergens, likes, eats_breakfast, eats_lunch, eats_dinner, meal_schedule
		 FROM household_members WHERE household_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		member := HouseholdMember{HouseholdID: id}
		var role sql.NullString
		if err := rows.Scan(&member.ID, &member.Name, &role, &member.Allergens, &member.Likes,
			&member.EatsBreakfast, &member.EatsLunch, &member.EatsDinner, &member.MealSchedule); err != nil {
			return nil, serr.Wrap(err, "failed to scan household member")
		}
		member.Role = role.String
		household.Members = append(household.Members, member)
	}

	toolRows, err := db.Query(
		`SELECT id, label, category, quantity FROM kitchen_tools WHERE household_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer toolRows.Close()
	for toolRows.Next() {
		tool := KitchenTool{HouseholdID: id}
		var category sql.NullString
		if err := toolRows.Scan(&tool.ID, &tool.Label, &category, &tool.Quantity); err != nil {
			return nil, serr.Wrap(err, "failed to scan kitchen tool")
		}
		tool.Category = category.String
		household.KitchenTools = append(household.KitchenTools, tool)
	}

	pantryRows, err := db.Query(
		`SELECT id, name, quantity, unit, days_until_expiry FROM pantry_items WHERE household_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer pantryRows.Close()
	for pantryRows.Next() {
		item := PantryItem{HouseholdID: id}
		var unit sql.NullString
		var expiry sql.NullInt64
		if err := pantryRows.Scan(&item.ID, &item.Name, &item.Quantity, &unit, &expiry); err != nil {
			return nil, serr.Wrap(err, "failed to scan pantry item")
		}
		item.Unit = unit.String
		if expiry.Valid {
			days := int(expiry.Int64)
			item.DaysUntilExpiry = &days
		}
		household.PantryItems = append(household.PantryItems, item)
	}

	return household, nil
}

// AddMember inserts one member and returns the stored row
func (db *DB) AddMember(householdID int64, member HouseholdMember) (*HouseholdMember, error) {
	err := db.QueryRow(
		`INSERT INTO household_members
			(household_id, name, role, allergens, likes, eats_breakfast, eats_lunch, eats_dinner, meal_schedule)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		householdID, member.Name, member.Role,
		mustJSON(member.Allergens), mustJSON(member.Likes),
		member.EatsBreakfast, member.EatsLunch, member.EatsDinner,
		mustJSON(member.MealSchedule),
	).Scan(&member.ID)
	if err != nil {
		return nil, serr.Wrap(err, "failed to insert household member", "member", member.Name)
	}
	member.HouseholdID = householdID
	return &member, nil
}

// DeleteMember removes a member from the household roster. Deleting a
// member that is already gone is not an error.
func (db *DB) DeleteMember(householdID, memberID int64) error {
	_, err := db.Exec(
		`DELETE FROM household_members WHERE id = ? AND household_id = ?`,
		memberID, householdID,
	)
	return err
}

// MemberMealsUpdate describes a change to a member's meal attendance.
// HasMeals and HasSchedule distinguish "not provided" from "clear".
type MemberMealsUpdate struct {
	Meals       []string
	HasMeals    bool
	Schedule    JSONMap
	HasSchedule bool
}

// UpdateMemberMeals applies a meals update and returns the member, or
// nil when the member does not belong to the household. A schedule
// without an explicit meals list derives the default toggles from the
// meals appearing anywhere in the schedule; a meals list without a
// schedule clears any stored per-day overrides.
func (db *DB) UpdateMemberMeals(householdID, memberID int64, update MemberMealsUpdate) (*HouseholdMember, error) {
	member, err := db.getMember(householdID, memberID)
	if err != nil || member == nil {
		return nil, err
	}

	meals := update.Meals
	haveMeals := update.HasMeals
	if update.HasSchedule {
		member.MealSchedule = update.Schedule
		if !haveMeals {
			meals = mealsFromSchedule(update.Schedule)
			haveMeals = true
		}
	}
	if haveMeals {
		member.EatsBreakfast, member.EatsLunch, member.EatsDinner = mealsToFlags(meals)
		if !update.HasSchedule {
			member.MealSchedule = nil
		}
	}

	_, err = db.Exec(
		`UPDATE household_members
		 SET eats_breakfast = ?, eats_lunch = ?, eats_dinner = ?, meal_schedule = ?
		 WHERE id = ? AND household_id = ?`,
		member.EatsBreakfast, member.EatsLunch, member.EatsDinner,
		mustJSON(member.MealSchedule), memberID, householdID,
	)
	if err != nil {
		return nil, serr.Wrap(err, "failed to update member meals", "member_id", strconv.FormatInt(memberID, 10))
	}
	return member, nil
}

func (db *DB) getMember(householdID, memberID int64) (*HouseholdMember, error) {
	member := &HouseholdMember{ID: memberID, HouseholdID: householdID}
	var role sql.NullString
	err := db.QueryRow(
		`SELECT name, role, allergens, likes, eats_breakfast, eats_lunch, eats_dinner, meal_schedule
		 FROM household_members WHERE id = ? AND household_id = ?`,
		memberID, householdID,
	).Scan(&member.Name, &role, &member.Allergens, &member.Likes,
		&member.EatsBreakfast, &member.EatsLunch, &member.EatsDinner, &member.MealSchedule)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to load household member")
	}
	member.Role = role.String
	return member, nil
}

// mealsToFlags maps a meal-name list onto the eats_* defaults. An
// empty list means no restriction, so every meal stays on.
func mealsToFlags(meals []string) (breakfast, lunch, dinner bool) {
	if len(meals) == 0 {
		return true, true, true
	}
	for _, meal := range meals {
		switch strings.ToLower(strings.TrimSpace(meal)) {
		case "breakfast":
			breakfast = true
		case "lunch":
			lunch = true
		case "dinner":
			dinner = true
		}
	}
	return breakfast, lunch, dinner
}

// mealsFromSchedule collects every meal named on any day of a
// per-day override schedule, in Breakfast/Lunch/Dinner order
func mealsFromSchedule(schedule JSONMap) []string {
	seen := map[string]bool{}
	for _, dayMeals := range schedule {
		names, ok := dayMeals.([]any)
		if !ok {
			continue
		}
		for _, name := range names {
			if label, ok := name.(string); ok {
				seen[strings.ToLower(strings.TrimSpace(label))] = true
			}
		}
	}
	var meals []string
	for _, slot := range []string{"Breakfast", "Lunch", "Dinner"} {
		if seen[strings.ToLower(slot)] {
			meals = append(meals, slot)
		}
	}
	return meals
}

// ListHouseholds returns household headers without rosters, newest first
func (db *DB) ListHouseholds() ([]Household, error) {
	rows, err := db.Query(
		`SELECT id, name, eco_friendly, use_leftovers, created_at FROM households ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var households []Household
	for rows.Next() {
		var h Household
		if err := rows.Scan(&h.ID, &h.Name, &h.EcoFriendly, &h.UseLeftovers, &h.CreatedAt); err != nil {
			return nil, serr.Wrap(err, "failed to scan household")
		}
		households = append(households, h)
	}
	return households, nil
}

// mustJSON marshals for insertion; nil stays NULL
func mustJSON(value any) any {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return string(data)
}
