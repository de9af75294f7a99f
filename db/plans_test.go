package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// openTestDB opens a throwaway DuckDB file and runs migrations on it,
// bypassing the process-wide singleton
func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecofood_test.db")
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	database := &DB{conn: conn, path: path}
	if err := database.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return database
}

func planEntry(day, meal, title string) map[string]any {
	return map[string]any{"day": day, "meal": meal, "title": title, "summary": "test"}
}

func testWeek() time.Time {
	return time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
}

func TestSavePlanReplacesExistingWeek(t *testing.T) {
	database := openTestDB(t)
	household, err := database.CreateHousehold(HouseholdParams{Name: "Resave House"})
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	first, err := database.SavePlan(SavePlanParams{
		HouseholdID: household.ID,
		WeekStart:   testWeek(),
		SessionID:   "run-1",
		Entries: []map[string]any{
			planEntry("Mon", "Breakfast", "Oatmeal"),
			planEntry("Mon", "Dinner", "Old Stew"),
		},
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if len(first.Entries) != 2 {
		t.Fatalf("expected 2 entries after first save, got %d", len(first.Entries))
	}

	second, err := database.SavePlan(SavePlanParams{
		HouseholdID:  household.ID,
		WeekStart:    testWeek(),
		SessionID:    "run-2",
		EcoFriendly:  true,
		UseLeftovers: true,
		Notes:        "lighter dinners",
		Entries: []map[string]any{
			planEntry("Mon", "Dinner", "New Stew"),
		},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	// Only the latest save's entries exist afterward
	current, err := database.GetPlanForWeek(household.ID, testWeek())
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if current == nil || current.ID != second.ID {
		t.Fatalf("expected the second plan to own the week, got %+v", current)
	}
	if len(current.Entries) != 1 || current.Entries[0].Title != "New Stew" {
		t.Fatalf("expected only the replacement entry, got %+v", current.Entries)
	}
	if current.SessionID != "run-2" || !current.EcoFriendly || !current.UseLeftovers ||
		current.Notes != "lighter dinners" {
		t.Errorf("plan options did not round-trip: %+v", current)
	}

	var planCount int
	if err := database.QueryRow(
		`SELECT COUNT(*) FROM meal_plans WHERE household_id = ?`, household.ID,
	).Scan(&planCount); err != nil {
		t.Fatalf("count plans: %v", err)
	}
	if planCount != 1 {
		t.Errorf("re-save must replace, not duplicate: %d plans", planCount)
	}

	var entryCount int
	if err := database.QueryRow(
		`SELECT COUNT(*) FROM plan_entries WHERE plan_id = ?`, first.ID,
	).Scan(&entryCount); err != nil {
		t.Fatalf("count orphan entries: %v", err)
	}
	if entryCount != 0 {
		t.Errorf("first save's entries should be gone, found %d", entryCount)
	}
}

func TestSavePlanPrunesZeroAttendeeSlots(t *testing.T) {
	database := openTestDB(t)
	household, err := database.CreateHousehold(HouseholdParams{Name: "Pruning House"})
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	plan, err := database.SavePlan(SavePlanParams{
		HouseholdID: household.ID,
		WeekStart:   testWeek(),
		Entries: []map[string]any{
			planEntry("Mon", "Breakfast", "Toast"),
			planEntry("Mon", "Lunch", "Soup"),
			planEntry("Mon", "Dinner", "Curry"),
		},
		AttendeeIDs: map[string][]int64{
			"Mon|Breakfast": {},       // tracked, nobody home
			"Mon|Dinner":    {10, 11}, // tracked with attendees
			// Mon|Lunch untracked: kept as-is
		},
	})
	if err != nil {
		t.Fatalf("save plan: %v", err)
	}

	if len(plan.Entries) != 2 {
		t.Fatalf("expected the empty-attendee slot to be dropped, got %d entries", len(plan.Entries))
	}
	for _, entry := range plan.Entries {
		if entry.Meal == "Breakfast" {
			t.Errorf("zero-attendee breakfast should not be persisted: %+v", entry)
		}
	}

	var dinner *PlanEntry
	for i := range plan.Entries {
		if plan.Entries[i].Meal == "Dinner" {
			dinner = &plan.Entries[i]
		}
	}
	if dinner == nil || len(dinner.AttendeeIDs) != 2 {
		t.Fatalf("dinner should keep its attendee list, got %+v", dinner)
	}
}
