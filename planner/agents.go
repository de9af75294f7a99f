package planner

import (
	"fmt"
	"strings"
	"time"

	"ecofood/tools"
)

// HouseholdProfilerAgent aggregates member allergens, likes, and role
// counts into frequency-sorted summaries. Deterministic and pure.
type HouseholdProfilerAgent struct {
	agentBase
	household *tools.HouseholdToolset
}

// NewHouseholdProfilerAgent resolves the household tool set
func NewHouseholdProfilerAgent(reg *tools.Registry) (*HouseholdProfilerAgent, error) {
	household, err := reg.Household()
	if err != nil {
		return nil, err
	}
	return &HouseholdProfilerAgent{
		agentBase: agentBase{name: "household-profiler", kind: AgentSequential},
		household: household,
	}, nil
}

// Run profiles the household and publishes the profile to the context
func (a *HouseholdProfilerAgent) Run(ctx *SessionContext, members []tools.Member) (AgentResult, error) {
	profile := a.household.Profile(members)
	ctx.Set("household_profile", profile)
	return AgentResult{
		Agent:   a.name,
		Stage:   "profile.ready",
		Payload: map[string]any{"profile": profile},
	}, nil
}

// ubiquitousTools are always considered satisfied during tool matching
var ubiquitousTools = map[string]bool{
	"mixing bowl":   true,
	"whisk":         true,
	"knife":         true,
	"cutting board": true,
}

// MealArchitectAgent is the plan-generation step. When a text generator
// is configured it asks the chef tool set for an LLM-generated week;
// otherwise it assembles the plan from the deterministic catalogue.
type MealArchitectAgent struct {
	agentBase
	recipes *tools.RecipeToolset
	chef    *tools.ChefToolset
	staging *tools.PlanStagingToolset
}

// NewMealArchitectAgent resolves the recipe, chef, and staging tool
// sets. The chef's LLM path is optional; everything else is required.
func NewMealArchitectAgent(reg *tools.Registry) (*MealArchitectAgent, error) {
	recipes, err := reg.Recipes()
	if err != nil {
		return nil, err
	}
	chef, err := reg.Chef()
	if err != nil {
		return nil, err
	}
	staging, err := reg.Staging()
	if err != nil {
		return nil, err
	}
	return &MealArchitectAgent{
		agentBase: agentBase{name: "meal-architect", kind: AgentSequential},
		recipes:   recipes,
		chef:      chef,
		staging:   staging,
	}, nil
}

// ArchitectInput bundles the architect's explicit arguments
type ArchitectInput struct {
	Profile      tools.HouseholdProfile
	Notes        string
	EcoFriendly  bool
	KitchenTools []tools.KitchenTool
	Days         []string // nil means the full week
}

// Run produces the candidate plan. A plan with zero entries is a
// terminal failure surfaced as a PlanGenerationError.
func (a *MealArchitectAgent) Run(ctx *SessionContext, input ArchitectInput) (AgentResult, error) {
	var plan []map[string]any
	var model string

	if a.chef.CanPlanWeek() {
		week, err := a.chef.PlanWeek(input.Profile, input.Notes, input.EcoFriendly, input.KitchenTools, input.Days)
		if err != nil {
			return AgentResult{}, err
		}
		plan = week.Plan
		model = week.Model
	} else {
		var err error
		plan, err = a.buildFromCatalogue(input)
		if err != nil {
			return AgentResult{}, err
		}
	}

	stored, err := a.staging.SaveAndTag(map[string]any{"week": plan, "notes": input.Notes}, []string{"draft"})
	if err != nil {
		return AgentResult{}, err
	}
	ctx.Set("plan_draft", map[string]any{"items": plan, "storage": stored})

	payload := map[string]any{
		"plan":    plan,
		"plan_id": stored.PlanID,
		"notes":   input.Notes,
	}
	if model != "" {
		payload["model"] = model
	}
	return AgentResult{Agent: a.name, Stage: "plan.candidate", Payload: payload}, nil
}

// buildFromCatalogue assigns recipes across the requested days using
// templated slot queries and round-robin de-duplication. It degrades
// through fallback queries and index cycling rather than failing for
// "not enough recipes".
func (a *MealArchitectAgent) buildFromCatalogue(input ArchitectInput) ([]map[string]any, error) {
	primary := "balanced"
	if len(input.Profile.TopLikes) > 0 {
		primary = input.Profile.TopLikes[0].Name
	}
	if input.EcoFriendly {
		primary = "plant-based " + primary
	}

	var toolLabels, toolCategories []string
	for _, tool := range input.KitchenTools {
		if tool.Quantity <= 0 {
			continue
		}
		if tool.Label != "" {
			toolLabels = append(toolLabels, tool.Label)
		}
		if tool.Category != "" {
			toolCategories = append(toolCategories, tool.Category)
		}
	}
	normalizedLabels := normalizeAll(toolLabels)
	normalizedCategories := normalizeAll(toolCategories)

	matchesAvailableTools := func(recipe tools.Recipe) bool {
		if len(recipe.RequiredTools) == 0 {
			return true
		}
		if len(normalizedLabels) == 0 && len(normalizedCategories) == 0 {
			return true
		}
		for _, requirement := range recipe.RequiredTools {
			req := normalize(requirement)
			if ubiquitousTools[req] {
				continue
			}
			if !fuzzyMatchAny(req, normalizedLabels) && !fuzzyMatchAny(req, normalizedCategories) {
				return false
			}
		}
		return true
	}

	pickToolHint := func(recipe tools.Recipe) string {
		for _, requirement := range recipe.RequiredTools {
			req := normalize(requirement)
			for i, normalized := range normalizedLabels {
				if strings.Contains(normalized, req) || strings.Contains(req, normalized) {
					return toolLabels[i]
				}
			}
			for i, normalized := range normalizedCategories {
				if strings.Contains(normalized, req) || strings.Contains(req, normalized) {
					return toolCategories[i]
				}
			}
		}
		if len(recipe.RequiredTools) > 0 {
			return recipe.RequiredTools[0]
		}
		if len(toolLabels) > 0 {
			return toolLabels[0]
		}
		if len(toolCategories) > 0 {
			return toolCategories[0]
		}
		return "basic cookware"
	}

	cache := make(map[string][]tools.Recipe)
	search := func(query string) []tools.Recipe {
		key := strings.ToLower(strings.TrimSpace(query))
		if cached, ok := cache[key]; ok {
			return cached
		}
		found := a.recipes.Search(query, tools.SearchOptions{Limit: 10})
		cache[key] = found
		return found
	}

	recipes := append([]tools.Recipe{}, search(primary)...)
	if len(recipes) < 7 {
		existing := make(map[string]bool, len(recipes))
		for _, recipe := range recipes {
			existing[recipe.ID] = true
		}
		for _, recipe := range search("") {
			if !existing[recipe.ID] {
				recipes = append(recipes, recipe)
			}
		}
	}
	if len(recipes) == 0 {
		recipes = search("")
	}

	var matching []tools.Recipe
	for _, recipe := range recipes {
		if matchesAvailableTools(recipe) {
			matching = append(matching, recipe)
		}
	}
	recipePool := matching
	if len(recipePool) == 0 {
		recipePool = recipes
	}
	if len(recipePool) == 0 {
		return nil, &PlanGenerationError{Reason: "recipe catalogue yielded no candidates"}
	}

	slotQueries := map[string][]string{
		"Breakfast": {"breakfast " + primary, "breakfast seasonal " + primary, "creative breakfast", primary, ""},
		"Lunch":     {"lunch " + primary, "vibrant lunch ideas", primary + " bowls", primary, ""},
		"Dinner":    {"dinner " + primary, "chef inspired dinner", "weeknight " + primary, primary, ""},
	}

	resolveSlotPool := func(slot string) []tools.Recipe {
		for _, query := range slotQueries[slot] {
			var pool []tools.Recipe
			for _, recipe := range search(query) {
				if matchesAvailableTools(recipe) {
					pool = append(pool, recipe)
				}
			}
			if len(pool) > 0 {
				return pool
			}
		}
		return recipePool
	}

	slotPools := make(map[string][]tools.Recipe, len(tools.MealSlots))
	for _, slot := range tools.MealSlots {
		slotPools[slot] = resolveSlotPool(slot)
	}

	usedRecipeIDs := make(map[string]bool)
	pickUniqueRecipe := func(pool []tools.Recipe, dayIndex, slotIndex int) tools.Recipe {
		for _, recipe := range pool {
			if !usedRecipeIDs[recipe.ID] {
				usedRecipeIDs[recipe.ID] = true
				return recipe
			}
		}
		for _, recipe := range recipePool {
			if !usedRecipeIDs[recipe.ID] {
				usedRecipeIDs[recipe.ID] = true
				return recipe
			}
		}
		// Pool exhausted: cycle deterministically
		return pool[(dayIndex*len(tools.MealSlots)+slotIndex)%len(pool)]
	}

	targetDays := canonicalDays(input.Days)

	var plan []map[string]any
	for dayIndex, day := range tools.DayLabels {
		if !containsDay(targetDays, day) {
			continue
		}
		for slotIndex, slot := range tools.MealSlots {
			pool := slotPools[slot]
			if len(pool) == 0 {
				pool = recipePool
			}
			recipe := pickUniqueRecipe(pool, dayIndex, slotIndex)

			steps := recipe.Steps
			if len(steps) == 0 {
				steps = []string{"Review recipe steps - data was missing, default instructions applied."}
			}
			ingredients := make([]map[string]any, 0, len(recipe.Ingredients))
			for _, ing := range recipe.Ingredients {
				ingredients = append(ingredients, ing.Map())
			}

			plan = append(plan, map[string]any{
				"day":                 day,
				"meal":                slot,
				"recipe_id":           recipe.ID,
				"title":               recipe.Title,
				"summary":             fmt.Sprintf("%s: %s Tool focus: %s.", slot, recipe.Summary, pickToolHint(recipe)),
				"ingredients":         ingredients,
				"steps":               steps,
				"prep_minutes":        recipe.PrepMinutes,
				"cook_minutes":        recipe.CookMinutes,
				"calories_per_person": recipe.CaloriesPerPerson,
				"required_tools":      recipe.RequiredTools,
			})
		}
	}

	if len(plan) == 0 {
		return nil, &PlanGenerationError{Reason: "catalogue assignment produced no entries"}
	}
	return plan, nil
}

// ChefCurationAgent deterministically remixes titles and summaries.
// Purely cosmetic; never drops or reorders entries.
type ChefCurationAgent struct {
	agentBase
	chef *tools.ChefToolset
}

func NewChefCurationAgent(reg *tools.Registry) (*ChefCurationAgent, error) {
	chef, err := reg.Chef()
	if err != nil {
		return nil, err
	}
	return &ChefCurationAgent{
		agentBase: agentBase{name: "chef-curator", kind: AgentSequential},
		chef:      chef,
	}, nil
}

func (a *ChefCurationAgent) Run(ctx *SessionContext, plan []map[string]any, profile tools.HouseholdProfile, notes string) (AgentResult, error) {
	menu := a.chef.BuildMenu(plan, &profile, notes)
	ctx.Set("chef_menu", menu)
	return AgentResult{
		Agent: a.name,
		Stage: "plan.curated",
		Payload: map[string]any{
			"plan":       menu.Plan,
			"themes":     menu.Themes,
			"menu_story": menu.MenuStory,
		},
	}, nil
}

// NutritionReviewAgent runs the keyword-heuristic macro estimator over
// the concatenated entry summaries. Non-authoritative.
type NutritionReviewAgent struct {
	agentBase
	nutrition *tools.NutritionToolset
}

func NewNutritionReviewAgent(reg *tools.Registry) (*NutritionReviewAgent, error) {
	nutrition, err := reg.Nutrition()
	if err != nil {
		return nil, err
	}
	return &NutritionReviewAgent{
		agentBase: agentBase{name: "nutrition-reviewer", kind: AgentParallel},
		nutrition: nutrition,
	}, nil
}

func (a *NutritionReviewAgent) Run(ctx *SessionContext, plan []map[string]any) (AgentResult, error) {
	summaries := make([]string, 0, len(plan))
	for _, item := range plan {
		summaries = append(summaries, tools.GetString(item, "summary"))
	}
	analysis := a.nutrition.Analyze(strings.Join(summaries, "\n"))
	ctx.Set("nutrition_review", analysis)
	return AgentResult{
		Agent:   a.name,
		Stage:   "plan.review.nutrition",
		Payload: map[string]any{"analysis": analysis},
	}, nil
}

// PantryReviewAgent turns soon-expiring pantry items into usage
// suggestions and round-robin-attaches one hint per plan entry.
type PantryReviewAgent struct {
	agentBase
	pantry *tools.PantryToolset
}

func NewPantryReviewAgent(reg *tools.Registry) (*PantryReviewAgent, error) {
	pantry, err := reg.Pantry()
	if err != nil {
		return nil, err
	}
	return &PantryReviewAgent{
		agentBase: agentBase{name: "pantry-reviewer", kind: AgentParallel},
		pantry:    pantry,
	}, nil
}

func (a *PantryReviewAgent) Run(ctx *SessionContext, soonExpiring []tools.PantryItem, plan []map[string]any, useLeftovers bool) (AgentResult, error) {
	items := soonExpiring
	if !useLeftovers {
		items = nil
	}
	usage := a.pantry.SuggestUsage(items)

	annotated := make([]map[string]any, 0, len(plan))
	for idx, item := range plan {
		entry := make(map[string]any, len(item)+1)
		for k, v := range item {
			entry[k] = v
		}
		if len(usage.Suggestions) > 0 {
			entry["pantry_hint"] = usage.Suggestions[idx%len(usage.Suggestions)].Title
		} else {
			entry["pantry_hint"] = nil
		}
		annotated = append(annotated, entry)
	}

	payload := map[string]any{
		"suggestions":    usage,
		"annotated_plan": annotated,
	}
	ctx.Set("pantry_review", payload)
	return AgentResult{Agent: a.name, Stage: "plan.review.pantry", Payload: payload}, nil
}

// PlanSynthesisAgent merges the final plan, both reviews, the shopping
// list, and the calendar export into the terminal payload.
type PlanSynthesisAgent struct {
	agentBase
	shopping *tools.ShoppingToolset
	calendar *tools.CalendarToolset
}

func NewPlanSynthesisAgent(reg *tools.Registry) (*PlanSynthesisAgent, error) {
	shopping, err := reg.Shopping()
	if err != nil {
		return nil, err
	}
	calendar, err := reg.Calendar()
	if err != nil {
		return nil, err
	}
	return &PlanSynthesisAgent{
		agentBase: agentBase{name: "plan-synthesizer", kind: AgentSequential},
		shopping:  shopping,
		calendar:  calendar,
	}, nil
}

// SynthesisInput bundles the synthesizer's explicit arguments
type SynthesisInput struct {
	Plan            []map[string]any
	NutritionReview map[string]any
	PantryReview    map[string]any
	WeekStart       time.Time // zero when unscheduled
}

func (a *PlanSynthesisAgent) Run(ctx *SessionContext, input SynthesisInput) (AgentResult, error) {
	planItems := make([]tools.ShoppingPlanItem, 0, len(input.Plan))
	for _, item := range input.Plan {
		var lines []string
		if rawIngredients, ok := item["ingredients"].([]map[string]any); ok {
			for _, ing := range rawIngredients {
				lines = append(lines, formatIngredientLine(ing))
			}
		} else if rawList, ok := item["ingredients"].([]any); ok {
			for _, raw := range rawList {
				if ing, ok := raw.(map[string]any); ok {
					lines = append(lines, formatIngredientLine(ing))
				}
			}
		}
		if len(lines) == 0 {
			if summary := tools.GetString(item, "summary"); summary != "" {
				lines = []string{summary}
			}
		}
		planItems = append(planItems, tools.ShoppingPlanItem{
			Name:        tools.GetString(item, "title"),
			Ingredients: lines,
		})
	}
	shoppingList := a.shopping.Generate(planItems)

	events := make([]tools.CalendarEvent, 0, len(input.Plan))
	for idx, item := range input.Plan {
		day := tools.GetString(item, "day")
		summary := tools.GetString(item, "summary")
		if summary == "" {
			summary = "Meal"
		}
		prep, _ := tools.GetInt(item, "prep_minutes")
		cook, _ := tools.GetInt(item, "cook_minutes")
		calories, _ := tools.GetInt(item, "calories_per_person")
		events = append(events, tools.CalendarEvent{
			Title: fmt.Sprintf("%s - %s", day, tools.GetString(item, "title")),
			Date:  eventDate(input.WeekStart, day, idx),
			Description: fmt.Sprintf("%s | prep %d min · cook %d min · %d kcal/person",
				summary, prep, cook, calories),
		})
	}
	calendarExport := a.calendar.ExportICS(events)

	finalPlan := map[string]any{
		"plan": input.Plan,
		"reviews": map[string]any{
			"nutrition": input.NutritionReview,
			"pantry":    input.PantryReview,
		},
		"shopping_list": shoppingList,
		"calendar":      calendarExport,
	}
	ctx.Set("final_plan", finalPlan)
	return AgentResult{Agent: a.name, Stage: "plan.final", Payload: finalPlan}, nil
}

func formatIngredientLine(ing map[string]any) string {
	var parts []string
	if quantity, ok := ing["quantity"]; ok && quantity != nil && quantity != "" {
		parts = append(parts, fmt.Sprintf("%v", quantity))
	}
	if unit := tools.GetString(ing, "unit"); unit != "" {
		parts = append(parts, unit)
	}
	name := tools.GetString(ing, "name")
	if name != "" {
		parts = append(parts, name)
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		if name == "" {
			name = "ingredient"
		}
		text = name
	}
	if notes := tools.GetString(ing, "notes"); notes != "" {
		text = fmt.Sprintf("%s (%s)", text, notes)
	}
	return text
}

// eventDate anchors a calendar event to the plan's week when known
func eventDate(weekStart time.Time, day string, idx int) string {
	if !weekStart.IsZero() {
		if offset, ok := dayIndexOf(day); ok {
			return weekStart.AddDate(0, 0, offset).Format("2006-01-02")
		}
	}
	return fmt.Sprintf("2024-07-%02d", idx+1)
}

func dayIndexOf(day string) (int, bool) {
	for i, label := range tools.DayLabels {
		if label == day {
			return i, true
		}
	}
	return 0, false
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = normalize(value)
	}
	return out
}

func fuzzyMatchAny(req string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(candidate, req) || strings.Contains(req, candidate) {
			return true
		}
	}
	return false
}

// canonicalDays maps requested day labels to Mon..Sun form; nil or
// empty input means the full week.
func canonicalDays(days []string) []string {
	if len(days) == 0 {
		return tools.DayLabels
	}
	var out []string
	for _, day := range days {
		if canonical := tools.CanonicalDay(day); canonical != "" {
			out = append(out, canonical)
		}
	}
	if len(out) == 0 {
		return tools.DayLabels
	}
	return out
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
