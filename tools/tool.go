package tools

import (
	"ecofood/providers"
)

// ConfigError indicates a required tool set could not be resolved.
// Resolution happens once at agent construction, so this surfaces at
// startup rather than mid-workflow.
type ConfigError struct {
	Namespace string
	Reason    string
}

func (e *ConfigError) Error() string {
	return "tool set " + e.Namespace + " unavailable: " + e.Reason
}

// Registry holds the typed tool sets the planning agents draw from.
// Each namespace is a struct of plain functions, registered at startup.
type Registry struct {
	household *HouseholdToolset
	recipes   *RecipeToolset
	nutrition *NutritionToolset
	pantry    *PantryToolset
	shopping  *ShoppingToolset
	calendar  *CalendarToolset
	chef      *ChefToolset
	staging   *PlanStagingToolset
}

// DefaultRegistry creates a registry with all tool sets registered.
// The text generator may be nil, in which case the LLM-backed planning
// tool reports itself unavailable and callers fall back to the catalogue.
func DefaultRegistry(gen providers.TextGenerator) *Registry {
	return &Registry{
		household: &HouseholdToolset{},
		recipes:   &RecipeToolset{catalogue: defaultCatalogue},
		nutrition: &NutritionToolset{},
		pantry:    &PantryToolset{},
		shopping:  &ShoppingToolset{},
		calendar:  &CalendarToolset{},
		chef:      &ChefToolset{generator: gen},
		staging:   &PlanStagingToolset{store: NewMemoryStagingStore()},
	}
}

// Household returns the household profiling tool set
func (r *Registry) Household() (*HouseholdToolset, error) {
	if r.household == nil {
		return nil, &ConfigError{Namespace: "household", Reason: "not registered"}
	}
	return r.household, nil
}

// Recipes returns the recipe catalogue tool set
func (r *Registry) Recipes() (*RecipeToolset, error) {
	if r.recipes == nil {
		return nil, &ConfigError{Namespace: "recipes", Reason: "not registered"}
	}
	return r.recipes, nil
}

// Nutrition returns the nutrition heuristic tool set
func (r *Registry) Nutrition() (*NutritionToolset, error) {
	if r.nutrition == nil {
		return nil, &ConfigError{Namespace: "nutrition", Reason: "not registered"}
	}
	return r.nutrition, nil
}

// Pantry returns the pantry suggestion tool set
func (r *Registry) Pantry() (*PantryToolset, error) {
	if r.pantry == nil {
		return nil, &ConfigError{Namespace: "pantry", Reason: "not registered"}
	}
	return r.pantry, nil
}

// Shopping returns the shopping list tool set
func (r *Registry) Shopping() (*ShoppingToolset, error) {
	if r.shopping == nil {
		return nil, &ConfigError{Namespace: "shopping", Reason: "not registered"}
	}
	return r.shopping, nil
}

// Calendar returns the calendar export tool set
func (r *Registry) Calendar() (*CalendarToolset, error) {
	if r.calendar == nil {
		return nil, &ConfigError{Namespace: "calendar", Reason: "not registered"}
	}
	return r.calendar, nil
}

// Chef returns the chef curation/planning tool set
func (r *Registry) Chef() (*ChefToolset, error) {
	if r.chef == nil {
		return nil, &ConfigError{Namespace: "chef", Reason: "not registered"}
	}
	return r.chef, nil
}

// Staging returns the plan staging tool set
func (r *Registry) Staging() (*PlanStagingToolset, error) {
	if r.staging == nil {
		return nil, &ConfigError{Namespace: "plans", Reason: "not registered"}
	}
	return r.staging, nil
}

// Helper to get a string out of a plan entry map
func GetString(entry map[string]any, key string) string {
	if val, ok := entry[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// Helper to get an int out of a plan entry map.
// JSON numbers arrive as float64.
func GetInt(entry map[string]any, key string) (int, bool) {
	val, exists := entry[key]
	if !exists {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
