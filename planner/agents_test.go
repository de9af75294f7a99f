package planner

import (
	"strings"
	"testing"

	"ecofood/tools"
)

func testRegistry() *tools.Registry {
	return tools.DefaultRegistry(nil)
}

func architectRun(t *testing.T, input ArchitectInput) []map[string]any {
	t.Helper()
	agent, err := NewMealArchitectAgent(testRegistry())
	if err != nil {
		t.Fatalf("constructing architect: %v", err)
	}
	result, err := agent.Run(NewSessionContext("test"), input)
	if err != nil {
		t.Fatalf("architect run: %v", err)
	}
	plan, _ := result.Payload["plan"].([]map[string]any)
	return plan
}

func TestArchitectCataloguePlanCoversWeek(t *testing.T) {
	plan := architectRun(t, ArchitectInput{
		Profile: tools.HouseholdProfile{
			TopLikes: []tools.LabelCount{{Name: "salmon", Count: 2}},
		},
	})

	if len(plan) != 21 {
		t.Fatalf("expected 21 entries for a full week, got %d", len(plan))
	}

	seen := make(map[string]bool)
	recipeIDs := make(map[string]bool)
	for _, entry := range plan {
		key := tools.GetString(entry, "day") + "|" + tools.GetString(entry, "meal")
		if seen[key] {
			t.Errorf("duplicate slot %s", key)
		}
		seen[key] = true
		recipeIDs[tools.GetString(entry, "recipe_id")] = true

		if tools.GetString(entry, "title") == "" {
			t.Errorf("slot %s has no title", key)
		}
		summary := tools.GetString(entry, "summary")
		if !strings.Contains(summary, "Tool focus:") {
			t.Errorf("slot %s summary missing tool hint: %q", key, summary)
		}
	}

	// Recipes stay unique until the pool is exhausted
	if len(recipeIDs) < 7 {
		t.Errorf("expected at least 7 distinct recipes across the week, got %d", len(recipeIDs))
	}
}

func TestArchitectHonorsDaySubset(t *testing.T) {
	plan := architectRun(t, ArchitectInput{Days: []string{"tuesday", "Thu"}})

	if len(plan) != 6 {
		t.Fatalf("expected 6 entries for two days, got %d", len(plan))
	}
	for _, entry := range plan {
		day := tools.GetString(entry, "day")
		if day != "Tue" && day != "Thu" {
			t.Errorf("unexpected day %q in subset plan", day)
		}
	}
}

func TestArchitectToolMatchingPrefersAvailableKit(t *testing.T) {
	// Only ubiquitous tools available: every recipe requiring just
	// those must still qualify
	plan := architectRun(t, ArchitectInput{
		KitchenTools: []tools.KitchenTool{
			{Label: "Mixing Bowl", Quantity: 1},
			{Label: "Knife", Quantity: 2},
		},
	})
	if len(plan) != 21 {
		t.Fatalf("ubiquitous-only kitchens still get a full plan, got %d entries", len(plan))
	}
}

func TestArchitectStagesDraft(t *testing.T) {
	agent, err := NewMealArchitectAgent(testRegistry())
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewSessionContext("stage-test")
	result, err := agent.Run(ctx, ArchitectInput{})
	if err != nil {
		t.Fatal(err)
	}

	if result.Stage != "plan.candidate" {
		t.Errorf("unexpected stage %q", result.Stage)
	}
	planID, _ := result.Payload["plan_id"].(string)
	if planID == "" {
		t.Error("draft should be staged with an id")
	}
	if ctx.Get("plan_draft", nil) == nil {
		t.Error("draft not published to the session context")
	}
}

func TestPantryReviewGatesOnLeftovers(t *testing.T) {
	agent, err := NewPantryReviewAgent(testRegistry())
	if err != nil {
		t.Fatal(err)
	}

	two := 2
	items := []tools.PantryItem{{Name: "spinach", DaysUntilExpiry: &two}}
	plan := []map[string]any{
		{"day": "Mon", "meal": "Breakfast", "title": "Oats", "summary": "Warm."},
		{"day": "Mon", "meal": "Lunch", "title": "Bowl", "summary": "Fresh."},
	}

	// Leftover reuse disabled: no suggestions, nil hints
	result, err := agent.Run(NewSessionContext("p1"), items, plan, false)
	if err != nil {
		t.Fatal(err)
	}
	usage, _ := result.Payload["suggestions"].(tools.PantryUsage)
	if len(usage.Suggestions) != 0 {
		t.Errorf("expected no suggestions when leftovers disabled, got %d", len(usage.Suggestions))
	}
	annotated, _ := result.Payload["annotated_plan"].([]map[string]any)
	if len(annotated) != 2 {
		t.Fatalf("annotated plan should preserve entries, got %d", len(annotated))
	}
	if annotated[0]["pantry_hint"] != nil {
		t.Errorf("expected nil hint, got %v", annotated[0]["pantry_hint"])
	}

	// Enabled: every entry gets a hint from the suggestion cycle
	result, err = agent.Run(NewSessionContext("p2"), items, plan, true)
	if err != nil {
		t.Fatal(err)
	}
	annotated, _ = result.Payload["annotated_plan"].([]map[string]any)
	for i, entry := range annotated {
		if hint, _ := entry["pantry_hint"].(string); hint == "" {
			t.Errorf("entry %d missing pantry hint", i)
		}
	}
}

func TestSynthesisMergesEverything(t *testing.T) {
	agent, err := NewPlanSynthesisAgent(testRegistry())
	if err != nil {
		t.Fatal(err)
	}

	plan := []map[string]any{
		{
			"day": "Mon", "meal": "Dinner", "title": "Salmon Bowl",
			"summary":      "Rice bowl.",
			"ingredients":  []map[string]any{{"name": "salmon", "quantity": "2", "unit": "fillets"}},
			"prep_minutes": 10, "cook_minutes": 15, "calories_per_person": 520,
		},
	}

	result, err := agent.Run(NewSessionContext("syn"), SynthesisInput{
		Plan:            plan,
		NutritionReview: map[string]any{"ok": true},
		PantryReview:    map[string]any{"ok": true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Stage != "plan.final" {
		t.Errorf("unexpected stage %q", result.Stage)
	}

	final := result.Payload
	if _, ok := final["plan"].([]map[string]any); !ok {
		t.Error("final plan missing plan list")
	}
	reviews, _ := final["reviews"].(map[string]any)
	if reviews["nutrition"] == nil || reviews["pantry"] == nil {
		t.Error("final plan missing reviews")
	}
	shopping, ok := final["shopping_list"].(tools.ShoppingList)
	if !ok {
		t.Fatal("final plan missing shopping list")
	}
	if !sliceContains(shopping.Groups["protein"], "2 fillets salmon") {
		t.Errorf("ingredient line not formatted, groups: %v", shopping.Groups)
	}
	calendar, ok := final["calendar"].(tools.CalendarExport)
	if !ok || !strings.Contains(calendar.ICS, "SUMMARY:Mon - Salmon Bowl") {
		t.Errorf("calendar export missing event, ics: %v", calendar)
	}
}

func TestFormatIngredientLine(t *testing.T) {
	cases := []struct {
		in   map[string]any
		want string
	}{
		{map[string]any{"name": "salmon", "quantity": "2", "unit": "fillets"}, "2 fillets salmon"},
		{map[string]any{"name": "basil", "notes": "fresh"}, "basil (fresh)"},
		{map[string]any{"quantity": 3.0, "name": "eggs"}, "3 eggs"},
		{map[string]any{}, "ingredient"},
	}
	for _, tc := range cases {
		if got := formatIngredientLine(tc.in); got != tc.want {
			t.Errorf("formatIngredientLine(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func sliceContains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
