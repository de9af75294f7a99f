package tools

import (
	"sort"
	"strings"
)

// MacroEstimate is a coarse per-meal macro breakdown
type MacroEstimate struct {
	CaloriesEstimate int `json:"calories_estimate"`
	ProteinG         int `json:"protein_g"`
	CarbsG           int `json:"carbs_g"`
	FatG             int `json:"fat_g"`
	FiberG           int `json:"fiber_g"`
}

// NutritionAnalysis is the heuristic estimator's output.
// Explicitly non-authoritative.
type NutritionAnalysis struct {
	Summary  string        `json:"summary"`
	Estimate MacroEstimate `json:"estimate"`
	Labels   []string      `json:"labels"`
}

// NutritionToolset provides a keyword-heuristic nutrition estimate
type NutritionToolset struct{}

// Analyze scores a meal description with a coarse keyword heuristic
func (t *NutritionToolset) Analyze(text string) NutritionAnalysis {
	lowered := strings.ToLower(text)

	estimate := MacroEstimate{
		CaloriesEstimate: 550,
		ProteinG:         25,
		CarbsG:           55,
		FatG:             20,
		FiberG:           8,
	}
	labels := make(map[string]bool)

	if containsAny(lowered, "salmon", "chicken", "tofu", "lentil", "beans") {
		estimate.ProteinG += 10
		labels["high-protein"] = true
	}
	if containsAny(lowered, "fried", "butter", "cream", "cheese") {
		estimate.FatG += 8
		labels["rich"] = true
	}
	if containsAny(lowered, "whole grain", "quinoa", "brown rice", "oats") {
		estimate.FiberG += 3
		labels["whole-grain"] = true
	}
	if containsAny(lowered, "broccoli", "spinach", "kale", "carrot", "pepper") {
		estimate.FiberG += 2
		labels["veg-forward"] = true
	}

	sorted := make([]string, 0, len(labels))
	for label := range labels {
		sorted = append(sorted, label)
	}
	sort.Strings(sorted)

	return NutritionAnalysis{
		Summary:  "Coarse, heuristic nutrition estimate - not medical advice.",
		Estimate: estimate,
		Labels:   sorted,
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
