package tools

import (
	"reflect"
	"testing"
)

func TestAnalyzeKeywordAdjustments(t *testing.T) {
	toolset := &NutritionToolset{}

	cases := []struct {
		name       string
		text       string
		wantLabels []string
		check      func(t *testing.T, e MacroEstimate)
	}{
		{
			name:       "plain meal keeps the baseline",
			text:       "plain rice dish",
			wantLabels: []string{},
			check: func(t *testing.T, e MacroEstimate) {
				if e.CaloriesEstimate != 550 || e.ProteinG != 25 {
					t.Errorf("baseline changed: %+v", e)
				}
			},
		},
		{
			name:       "protein keywords",
			text:       "Grilled Salmon with lemon",
			wantLabels: []string{"high-protein"},
			check: func(t *testing.T, e MacroEstimate) {
				if e.ProteinG != 35 {
					t.Errorf("expected protein 35, got %d", e.ProteinG)
				}
			},
		},
		{
			name:       "stacked labels sorted",
			text:       "fried chicken over brown rice with broccoli",
			wantLabels: []string{"high-protein", "rich", "veg-forward", "whole-grain"},
			check: func(t *testing.T, e MacroEstimate) {
				if e.FiberG != 13 {
					t.Errorf("expected fiber 8+3+2, got %d", e.FiberG)
				}
				if e.FatG != 28 {
					t.Errorf("expected fat 28, got %d", e.FatG)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analysis := toolset.Analyze(tc.text)
			if !reflect.DeepEqual(analysis.Labels, tc.wantLabels) {
				t.Errorf("labels = %v, want %v", analysis.Labels, tc.wantLabels)
			}
			if analysis.Summary == "" {
				t.Error("summary should state the estimate is heuristic")
			}
			tc.check(t, analysis.Estimate)
		})
	}
}
