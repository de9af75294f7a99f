package tools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ecofood/providers"
)

var culinaryThemes = []string{
	"Garden-to-table",
	"Fire-roasted",
	"Umami-forward",
	"Market brunch",
	"Wellness tonic",
	"Weeknight bistro",
	"Sunset mezze",
	"Chef's tasting",
}

var techniques = []string{
	"charred then glazed",
	"slow-poached",
	"fermented garnish",
	"crispy shallot crumble",
	"citrus-cured finish",
	"smoked spice dusting",
	"herb-infused oil drizzle",
	"pickled accent",
}

var pairings = []string{
	"sparkling yuzu water",
	"cold brew hibiscus tea",
	"cucumber-mint spritz",
	"ginger & lime kefir",
	"charred lemon seltzer",
	"roasted barley iced tea",
	"cacao nib cold brew",
	"citrus hop tonic",
}

var textureNotes = []string{
	"contrast velvety purées with crisp toppings",
	"balance acidity with a touch of honey",
	"layer smoky elements against something bright",
	"fold in toasted seeds for crunch",
	"build a chilled-warm temperature duet",
	"finish with aromatic herbs right before serving",
}

// DayLabels is the canonical week ordering used everywhere in planning
var DayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MealSlots is the canonical slot ordering within a day
var MealSlots = []string{"Breakfast", "Lunch", "Dinner"}

// ChefMenu is the curated plan plus narrative material
type ChefMenu struct {
	Plan      []map[string]any `json:"plan"`
	Themes    []string         `json:"themes"`
	MenuStory string           `json:"menu_story"`
}

// WeekPlan is the LLM-generated, normalized plan
type WeekPlan struct {
	Plan    []map[string]any `json:"plan"`
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	RawText string           `json:"raw_text"`
}

// ChefToolset gives plans a chef-driven treatment, and optionally
// generates whole plans via the configured text generator.
type ChefToolset struct {
	generator providers.TextGenerator
}

// CanPlanWeek reports whether the LLM-backed planning path is available
func (t *ChefToolset) CanPlanWeek() bool {
	return t.generator != nil
}

// BuildMenu remixes titles and summaries using cyclic theme, technique,
// and pairing lists keyed by entry index. Purely cosmetic; never drops
// or reorders entries. Title collisions get a disambiguating suffix.
func (t *ChefToolset) BuildMenu(plan []map[string]any, profile *HouseholdProfile, notes string) ChefMenu {
	var favorites []string
	if profile != nil {
		for _, like := range profile.TopLikes {
			favorites = append(favorites, like.Name)
		}
	}

	curated := make([]map[string]any, 0, len(plan))
	var storySnippets []string
	usedTitles := make(map[string]bool)

	for index, item := range plan {
		baseTitle := GetString(item, "title")
		if baseTitle == "" {
			meal := GetString(item, "meal")
			if meal == "" {
				meal = "Meal"
			}
			baseTitle = meal + " idea"
		}
		theme := culinaryThemes[index%len(culinaryThemes)]
		technique := techniques[index%len(techniques)]
		pairing := pairings[index%len(pairings)]
		texture := textureNotes[index%len(textureNotes)]

		themeLabel := theme
		if len(favorites) > 0 {
			inspo := favorites[index%len(favorites)]
			themeLabel = fmt.Sprintf("%s · inspired by %s", theme, titleCase(inspo))
		}

		composedTitle := baseTitle
		themeWord := strings.Fields(theme)[0]
		if !strings.Contains(baseTitle, themeWord) {
			composedTitle = themeWord + " " + baseTitle
		}
		if usedTitles[composedTitle] {
			meal := GetString(item, "meal")
			if meal == "" {
				meal = "Chef"
			}
			composedTitle = fmt.Sprintf("%s (%s)", composedTitle, meal)
		}
		usedTitles[composedTitle] = true

		summary := GetString(item, "summary")
		chefSummary := strings.TrimSpace(fmt.Sprintf("%s Finish %s, %s. Pair with %s.", summary, technique, texture, pairing))

		entry := make(map[string]any, len(item)+3)
		for k, v := range item {
			entry[k] = v
		}
		entry["title"] = composedTitle
		entry["summary"] = chefSummary
		entry["chef_theme"] = themeLabel
		entry["chef_pairing"] = pairing
		entry["chef_technique"] = technique
		curated = append(curated, entry)

		day := GetString(item, "day")
		if day == "" {
			day = "Day"
		}
		meal := GetString(item, "meal")
		if meal == "" {
			meal = "Meal"
		}
		storySnippets = append(storySnippets, fmt.Sprintf("%s %s: %s", day, meal, themeLabel))
	}

	menuStory := strings.Join(storySnippets, "; ")
	if notes != "" {
		menuStory = fmt.Sprintf("%s. Guest notes: %s.", menuStory, strings.TrimSpace(notes))
	}

	return ChefMenu{Plan: curated, Themes: storySnippets, MenuStory: menuStory}
}

// PlanWeek asks the text generator for a structured plan covering the
// given days (nil means the full week) and normalizes the result.
// Every failure mode surfaces as a PlanGenerationError.
func (t *ChefToolset) PlanWeek(profile HouseholdProfile, notes string, ecoFriendly bool, kitchenTools []KitchenTool, days []string) (*WeekPlan, error) {
	if t.generator == nil {
		return nil, &PlanGenerationError{Reason: "no text generator configured"}
	}

	targetDays := days
	if len(targetDays) == 0 {
		targetDays = DayLabels
	}

	prompt := buildWeekPrompt(profile, notes, ecoFriendly, kitchenTools, targetDays)

	response, err := t.generator.Generate(prompt)
	if err != nil {
		return nil, &PlanGenerationError{Reason: "generator invocation failed", Err: err}
	}

	planData, err := extractPlanFromText(response.Text)
	if err != nil {
		return nil, err
	}

	normalized := normalizePlan(planData, targetDays)
	if len(normalized) == 0 {
		return nil, &PlanGenerationError{Reason: "generator did not return a plan with entries"}
	}

	return &WeekPlan{
		Plan:    normalized,
		Model:   response.Model,
		Prompt:  prompt,
		RawText: response.Text,
	}, nil
}

func buildWeekPrompt(profile HouseholdProfile, notes string, ecoFriendly bool, kitchenTools []KitchenTool, targetDays []string) string {
	var likes, allergens, toolLabels []string
	for _, like := range profile.TopLikes {
		if like.Name != "" {
			likes = append(likes, like.Name)
		}
	}
	for _, allergen := range profile.Allergens {
		if allergen.Name != "" {
			allergens = append(allergens, allergen.Name)
		}
	}
	for _, tool := range kitchenTools {
		if tool.Label != "" && tool.Quantity > 0 {
			toolLabels = append(toolLabels, tool.Label)
		}
	}

	directives := []string{
		"Avoid repeating the same primary dish twice in the week.",
		"Use varied cuisines and textures to keep meals interesting.",
	}
	if len(likes) > 0 {
		directives = append(directives, fmt.Sprintf("Lean into household favorites: %s.", strings.Join(likes, ", ")))
	}
	if ecoFriendly {
		directives = append(directives, "Prioritize plant-forward or low-impact proteins.")
	}
	if len(allergens) > 0 {
		directives = append(directives, fmt.Sprintf("Never include allergens: %s.", strings.Join(allergens, ", ")))
	}
	if len(toolLabels) > 0 {
		directives = append(directives, fmt.Sprintf("Prefer cookware available: %s.", strings.Join(toolLabels, ", ")))
	}
	if notes != "" {
		directives = append(directives, fmt.Sprintf("Additional notes from the household: %s.", strings.TrimSpace(notes)))
	}

	var directiveLines strings.Builder
	for _, directive := range directives {
		directiveLines.WriteString("- " + directive + "\n")
	}

	return strings.TrimSpace(fmt.Sprintf(`
You are EcoFood's executive chef. Design menus for these days: %s.
Each listed day must include BREAKFAST, LUNCH, and DINNER. You must output STRICT JSON following
this schema:
{
  "plan": [
    {
      "day": "Mon",
      "meal": "Breakfast",
      "title": "...",
      "summary": "...",
      "ingredients": [{"name": "...", "quantity": "...", "unit": "...", "notes": "..."}],
      "steps": ["...", "..."],
      "prep_minutes": 0,
      "cook_minutes": 0,
      "calories_per_person": 0,
      "required_tools": ["pan", "oven"]
    }
  ]
}

Constraints:
- Exactly %d meals (3 meals per listed day) sorted by day then meal (Breakfast/Lunch/Dinner).
- Avoid dish repetition within the week.
- Include at least one adventurous or unexpected element each day.
- Keep instructions concise but descriptive enough to cook.
- Honor dietary notes and tool availability if provided.

Directives:
%s
Return only JSON. No commentary.`,
		strings.Join(targetDays, ", "), len(targetDays)*3, directiveLines.String()))
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

func extractPlanFromText(text string) ([]map[string]any, error) {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil, &PlanGenerationError{Reason: "response did not contain JSON"}
	}
	var parsed struct {
		Plan []map[string]any `json:"plan"`
	}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, &PlanGenerationError{Reason: "unable to parse response JSON", Err: err}
	}
	if parsed.Plan == nil {
		return nil, &PlanGenerationError{Reason: "response JSON missing plan list"}
	}
	return parsed.Plan, nil
}

var dayNameMap = map[string]string{
	"monday": "Mon", "tuesday": "Tue", "wednesday": "Wed", "thursday": "Thu",
	"friday": "Fri", "saturday": "Sat", "sunday": "Sun",
	"mon": "Mon", "tue": "Tue", "wed": "Wed", "thu": "Thu",
	"fri": "Fri", "sat": "Sat", "sun": "Sun",
}

// CanonicalDay maps a free-form day name to its Mon..Sun label,
// returning "" when unrecognized.
func CanonicalDay(value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	if day, ok := dayNameMap[key]; ok {
		return day
	}
	if len(key) >= 3 {
		if day, ok := dayNameMap[key[:3]]; ok {
			return day
		}
	}
	return ""
}

func normalizePlan(plan []map[string]any, targetDays []string) []map[string]any {
	allowed := make(map[string]bool, len(targetDays))
	for _, day := range targetDays {
		if canonical := CanonicalDay(day); canonical != "" {
			allowed[canonical] = true
		}
	}

	var normalized []map[string]any
	for index, entry := range plan {
		day := CanonicalDay(GetString(entry, "day"))
		if day == "" {
			day = DayLabels[index/len(MealSlots)%len(DayLabels)]
		}
		if len(allowed) > 0 && !allowed[day] {
			continue
		}

		meal := titleCase(strings.TrimSpace(GetString(entry, "meal")))
		if !containsString(MealSlots, meal) {
			meal = MealSlots[index%len(MealSlots)]
		}

		title := GetString(entry, "title")
		if title == "" {
			title = meal + " inspiration"
		}
		summary := GetString(entry, "summary")
		if summary == "" {
			summary = "Chef-inspired idea."
		}

		steps := coerceSteps(entry["steps"])
		if len(steps) == 0 {
			steps = []string{"Gather ingredients and cook to taste."}
		}

		normalized = append(normalized, map[string]any{
			"day":                 day,
			"meal":                meal,
			"title":               title,
			"summary":             summary,
			"ingredients":         coerceIngredients(entry["ingredients"]),
			"steps":               steps,
			"prep_minutes":        safeInt(entry["prep_minutes"], 10),
			"cook_minutes":        safeInt(entry["cook_minutes"], 15),
			"calories_per_person": safeInt(entry["calories_per_person"], 450),
			"required_tools":      coerceStrings(entry["required_tools"]),
		})
	}
	return normalized
}

func coerceIngredients(raw any) []map[string]any {
	list, ok := raw.([]any)
	if !ok {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			name := GetString(v, "name")
			if name == "" {
				name = "Ingredient"
			}
			ing := map[string]any{"name": name}
			for _, key := range []string{"quantity", "unit", "notes"} {
				if val, exists := v[key]; exists && val != nil {
					ing[key] = val
				}
			}
			out = append(out, ing)
		case string:
			out = append(out, map[string]any{"name": v})
		}
	}
	return out
}

func coerceSteps(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var steps []string
	for _, item := range list {
		step := strings.TrimSpace(fmt.Sprintf("%v", item))
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

func coerceStrings(raw any) []string {
	switch list := raw.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok && str != "" {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}

func safeInt(raw any, fallback int) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + strings.ToLower(value[1:])
}
