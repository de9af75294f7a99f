package tools

import (
	"errors"
	"testing"

	"ecofood/providers"
)

// stubGenerator returns canned text for PlanWeek tests
type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(prompt string) (*providers.GenerateResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &providers.GenerateResponse{Text: s.text, Model: "stub-model"}, nil
}

func newChef(gen providers.TextGenerator) *ChefToolset {
	reg := DefaultRegistry(gen)
	chef, err := reg.Chef()
	if err != nil {
		panic(err)
	}
	return chef
}

func TestPlanWeekNormalizesEntries(t *testing.T) {
	gen := &stubGenerator{text: `Here is your menu:
{"plan": [
  {"day": "monday", "meal": "breakfast", "title": "Oats", "summary": "Warm oats.",
   "ingredients": [{"name": "oats", "quantity": "1", "unit": "cup"}, "berries"],
   "steps": ["Simmer oats."], "prep_minutes": 5, "cook_minutes": "10", "calories_per_person": 320.0,
   "required_tools": ["saucepan"]},
  {"day": "monday", "meal": "supper", "title": "", "summary": ""}
]}`}
	chef := newChef(gen)

	week, err := chef.PlanWeek(HouseholdProfile{}, "", false, nil, []string{"Mon"})
	if err != nil {
		t.Fatalf("PlanWeek failed: %v", err)
	}
	if len(week.Plan) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(week.Plan))
	}

	first := week.Plan[0]
	if first["day"] != "Mon" {
		t.Errorf("day not canonicalized: %v", first["day"])
	}
	if first["meal"] != "Breakfast" {
		t.Errorf("meal not title-cased: %v", first["meal"])
	}
	if got, _ := GetInt(first, "cook_minutes"); got != 10 {
		t.Errorf("string cook_minutes not coerced, got %d", got)
	}
	ingredients, ok := first["ingredients"].([]map[string]any)
	if !ok || len(ingredients) != 2 {
		t.Fatalf("ingredients not coerced: %v", first["ingredients"])
	}
	if ingredients[1]["name"] != "berries" {
		t.Errorf("string ingredient not wrapped: %v", ingredients[1])
	}

	second := week.Plan[1]
	if second["meal"] != "Lunch" {
		t.Errorf("unknown meal should fall back by index, got %v", second["meal"])
	}
	if second["title"] == "" {
		t.Error("blank title should get a default")
	}
	if second["summary"] != "Chef-inspired idea." {
		t.Errorf("blank summary should get the default, got %v", second["summary"])
	}
	steps, _ := second["steps"].([]string)
	if len(steps) != 1 || steps[0] != "Gather ingredients and cook to taste." {
		t.Errorf("missing steps should get the default, got %v", steps)
	}
	if got, _ := GetInt(second, "prep_minutes"); got != 10 {
		t.Errorf("expected default prep 10, got %d", got)
	}
	if got, _ := GetInt(second, "calories_per_person"); got != 450 {
		t.Errorf("expected default calories 450, got %d", got)
	}
}

func TestPlanWeekDropsDaysOutsideTarget(t *testing.T) {
	gen := &stubGenerator{text: `{"plan": [
		{"day": "Mon", "meal": "Breakfast", "title": "A", "summary": "a"},
		{"day": "Tue", "meal": "Breakfast", "title": "B", "summary": "b"}
	]}`}
	chef := newChef(gen)

	week, err := chef.PlanWeek(HouseholdProfile{}, "", false, nil, []string{"Tue"})
	if err != nil {
		t.Fatalf("PlanWeek failed: %v", err)
	}
	if len(week.Plan) != 1 || week.Plan[0]["day"] != "Tue" {
		t.Errorf("expected only Tue entries, got %v", week.Plan)
	}
}

func TestPlanWeekFailuresAreTyped(t *testing.T) {
	cases := []struct {
		name string
		gen  providers.TextGenerator
	}{
		{"nil generator", nil},
		{"generator error", &stubGenerator{err: errors.New("boom")}},
		{"no json", &stubGenerator{text: "sorry, no menu today"}},
		{"bad json", &stubGenerator{text: `{"plan": [}`}},
		{"missing plan key", &stubGenerator{text: `{"menu": []}`}},
		{"empty plan", &stubGenerator{text: `{"plan": []}`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chef := newChef(tc.gen)
			_, err := chef.PlanWeek(HouseholdProfile{}, "", false, nil, nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			var planErr *PlanGenerationError
			if !errors.As(err, &planErr) {
				t.Errorf("expected PlanGenerationError, got %T: %v", err, err)
			}
		})
	}
}

func TestBuildMenuPreservesEntriesAndDisambiguates(t *testing.T) {
	chef := newChef(nil)

	plan := []map[string]any{
		{"day": "Mon", "meal": "Breakfast", "title": "Oats", "summary": "Warm."},
		{"day": "Mon", "meal": "Lunch", "title": "Oats", "summary": "Again."},
		{"day": "Mon", "meal": "Dinner", "title": "", "summary": "Mystery."},
	}
	profile := HouseholdProfile{TopLikes: []LabelCount{{Name: "tacos", Count: 2}}}

	menu := chef.BuildMenu(plan, &profile, "light dinners")

	if len(menu.Plan) != len(plan) {
		t.Fatalf("curation must not drop entries: %d != %d", len(menu.Plan), len(plan))
	}

	titles := make(map[string]bool)
	for _, entry := range menu.Plan {
		title := GetString(entry, "title")
		if titles[title] {
			t.Errorf("duplicate curated title %q", title)
		}
		titles[title] = true

		for _, key := range []string{"chef_theme", "chef_pairing", "chef_technique"} {
			if GetString(entry, key) == "" {
				t.Errorf("entry missing %s", key)
			}
		}
	}

	// Originals untouched
	if plan[0]["title"] != "Oats" {
		t.Error("BuildMenu mutated its input")
	}
	if menu.MenuStory == "" || len(menu.Themes) != 3 {
		t.Errorf("expected story and 3 theme snippets, got %q / %v", menu.MenuStory, menu.Themes)
	}
}

func TestCanonicalDay(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"monday", "Mon"},
		{"  Friday ", "Fri"},
		{"sat", "Sat"},
		{"SUNDAYS", "Sun"},
		{"someday", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CanonicalDay(tc.in); got != tc.want {
			t.Errorf("CanonicalDay(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
