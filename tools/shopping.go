package tools

import (
	"sort"
	"strings"
)

// ShoppingPlanItem is one meal contributing ingredient lines
type ShoppingPlanItem struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// ShoppingList is the consolidated, classified shopping list
type ShoppingList struct {
	Groups map[string][]string `json:"groups"`
	All    []string            `json:"all"`
}

// ShoppingToolset builds a consolidated shopping list from plan items
type ShoppingToolset struct{}

// categoryKeywords drives the ingredient classifier. Checked in order;
// first category with a keyword hit wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"fresh_produce", []string{"lettuce", "spinach", "kale", "carrot", "onion", "garlic", "pepper", "tomato", "cucumber", "broccoli"}},
	{"protein", []string{"chicken", "beef", "pork", "salmon", "tofu", "tempeh", "egg"}},
	{"grains", []string{"rice", "quinoa", "pasta", "noodles", "bread", "tortilla"}},
	{"dairy", []string{"milk", "yogurt", "cheese", "butter"}},
	{"pantry_and_condiments", []string{"olive oil", "oil", "vinegar", "soy sauce", "spice", "cumin", "paprika", "salt"}},
	{"fruit", []string{"apple", "banana", "berry", "orange", "grape"}},
}

// Generate flattens ingredient lines, classifies them by keyword, and
// returns deduplicated, sorted groups plus a sorted union.
func (t *ShoppingToolset) Generate(planItems []ShoppingPlanItem) ShoppingList {
	var raw []string
	for _, item := range planItems {
		for _, ing := range item.Ingredients {
			text := strings.TrimSpace(ing)
			if text != "" {
				raw = append(raw, text)
			}
		}
	}
	if len(raw) == 0 {
		return ShoppingList{Groups: map[string][]string{}, All: []string{}}
	}

	groups := make(map[string]map[string]bool)
	for _, ing := range raw {
		category := classifyIngredient(ing)
		if groups[category] == nil {
			groups[category] = make(map[string]bool)
		}
		groups[category][ing] = true
	}

	out := ShoppingList{Groups: make(map[string][]string, len(groups))}
	allSet := make(map[string]bool)
	for category, set := range groups {
		items := make([]string, 0, len(set))
		for ing := range set {
			items = append(items, ing)
			allSet[ing] = true
		}
		sort.Strings(items)
		out.Groups[category] = items
	}

	out.All = make([]string, 0, len(allSet))
	for ing := range allSet {
		out.All = append(out.All, ing)
	}
	sort.Strings(out.All)
	return out
}

func classifyIngredient(ingredient string) string {
	lowered := strings.ToLower(ingredient)
	for _, group := range categoryKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(lowered, keyword) {
				return group.category
			}
		}
	}
	return "other"
}
