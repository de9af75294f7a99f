package tools

import (
	"fmt"
	"sort"
	"strings"
)

// PantryItem is one pantry item as seen by the suggestion heuristic.
// DaysUntilExpiry is nil when the expiry horizon is unknown.
type PantryItem struct {
	Name            string   `json:"name"`
	Quantity        float64  `json:"quantity,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	DaysUntilExpiry *int     `json:"days_until_expiry,omitempty"`
}

// UsageSuggestion is one templated meal idea built around expiring items
type UsageSuggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Uses        []string `json:"uses"`
	Style       string   `json:"style"`
}

// PantryUsage is the suggestion set for a batch of pantry items
type PantryUsage struct {
	Suggestions []UsageSuggestion `json:"suggestions"`
	Note        string            `json:"note,omitempty"`
}

// PantryToolset suggests meals that use up soon-to-expire pantry items
type PantryToolset struct{}

const unknownExpiry = 9999

// SuggestUsage orders items soonest-expiring first (name as tiebreak) and
// builds two or three template meals around the leading items.
func (t *PantryToolset) SuggestUsage(items []PantryItem) PantryUsage {
	focus := make([]PantryItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Name) != "" {
			item.Name = strings.TrimSpace(item.Name)
			focus = append(focus, item)
		}
	}
	sort.SliceStable(focus, func(i, j int) bool {
		a, b := expiryOf(focus[i]), expiryOf(focus[j])
		if a != b {
			return a < b
		}
		return focus[i].Name < focus[j].Name
	})

	names := make([]string, len(focus))
	for i, item := range focus {
		names[i] = item.Name
	}
	if len(names) == 0 {
		return PantryUsage{Suggestions: []UsageSuggestion{}, Note: "No valid items provided."}
	}

	primary := names[:min(3, len(names))]
	extra := names[min(3, len(names)):min(6, len(names))]

	var suggestions []UsageSuggestion

	// One-pan or sheet-pan meal
	rest := joinList(primary[1:])
	if rest == "" {
		rest = "mixed vegetables"
	}
	suggestions = append(suggestions, UsageSuggestion{
		Title: fmt.Sprintf("Sheet-pan dinner with %s", primary[0]),
		Description: fmt.Sprintf(
			"Roast %s together with %s on a single tray. Add olive oil, herbs, and a starch (e.g. potatoes or grains) to build a complete, low-effort dinner.",
			primary[0], rest),
		Uses:  primary,
		Style: "one-pan",
	})

	// Soup, stew, or curry style
	if len(primary) >= 2 {
		pair := joinList(primary[:2])
		suggestions = append(suggestions, UsageSuggestion{
			Title: fmt.Sprintf("Comfort stew using %s", pair),
			Description: fmt.Sprintf(
				"Combine %s in a pot with onions, garlic, and stock. Simmer into a stew or curry. Serve over rice or with crusty bread.",
				pair),
			Uses:  append(append([]string{}, primary[:2]...), extra...),
			Style: "stew",
		})
	}

	// Bowl / salad / grain bowl
	suggestions = append(suggestions, UsageSuggestion{
		Title: fmt.Sprintf("Next-day lunch bowls featuring %s", primary[0]),
		Description: fmt.Sprintf(
			"Turn leftover %s into cold or warm grain bowls. Pair with greens, a grain (rice, quinoa, bulgur), and a simple dressing to get an easy, balanced lunch.",
			joinList(primary)),
		Uses:  append(append([]string{}, primary...), extra...),
		Style: "bowl",
	})

	return PantryUsage{Suggestions: suggestions}
}

func expiryOf(item PantryItem) int {
	if item.DaysUntilExpiry == nil {
		return unknownExpiry
	}
	return *item.DaysUntilExpiry
}

func joinList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values[:len(values)-1], ", ") + " and " + values[len(values)-1]
	}
}
