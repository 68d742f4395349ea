package assistant

import (
	"strings"
	"testing"

	"github.com/jholhewres/medclaw/pkg/medclaw/gemini"
)

func TestApplySimplificationRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		level gemini.SimplificationLevel
		want  []string
		avoid []string
	}{
		{
			name:  "replaces known terms",
			input: "Patient has hypertension and reports dyspnea on exertion.",
			level: gemini.LevelBasic,
			want:  []string{"high blood pressure", "shortness of breath"},
			avoid: []string{"hypertension", "dyspnea"},
		},
		{
			name:  "compound term wins over substring",
			input: "History of diabetes mellitus type 2.",
			level: gemini.LevelBasic,
			want:  []string{"diabetes type 2"},
			avoid: []string{"mellitus"},
		},
		{
			name:  "case insensitive",
			input: "DIAGNOSIS: HYPERTENSION",
			level: gemini.LevelBasic,
			want:  []string{"high blood pressure"},
			avoid: []string{"HYPERTENSION"},
		},
		{
			name:  "simple level appends guidance footer",
			input: "Take with food.",
			level: gemini.LevelSimple,
			want:  []string{"Key Terms Explained:", "ask your doctor or nurse"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applySimplificationRules(tt.input, tt.level)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("result %q missing %q", got, want)
				}
			}
			for _, avoid := range tt.avoid {
				if strings.Contains(got, avoid) {
					t.Errorf("result %q still contains %q", got, avoid)
				}
			}
		})
	}
}

func TestApplySimplificationRulesNoFooterBelowSimple(t *testing.T) {
	got := applySimplificationRules("Take with food.", gemini.LevelIntermediate)
	if strings.Contains(got, "Key Terms Explained") {
		t.Errorf("intermediate level got the simple-level footer: %q", got)
	}
}

func TestExtractExplainedTerms(t *testing.T) {
	original := "Patient has hypertension, edema and dyspnea."
	simplified := applySimplificationRules(original, gemini.LevelBasic)

	terms := extractExplainedTerms(original, simplified)
	if len(terms) != 3 {
		t.Fatalf("terms = %v, want 3 entries", terms)
	}
	for _, want := range []string{"hypertension", "edema", "dyspnea"} {
		found := false
		for _, got := range terms {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("terms = %v, missing %q", terms, want)
		}
	}
}

func TestExtractExplainedTermsCapped(t *testing.T) {
	original := "hypertension edema dyspnea vertigo syncope pruritus urticaria"
	simplified := applySimplificationRules(original, gemini.LevelBasic)

	if terms := extractExplainedTerms(original, simplified); len(terms) > 5 {
		t.Errorf("terms = %v, want at most 5", terms)
	}
}

func TestWordCountReduction(t *testing.T) {
	tests := []struct {
		name       string
		original   string
		simplified string
		want       float64
	}{
		{"half the words", "one two three four", "one two", 50},
		{"no change", "same text", "same text", 0},
		{"empty original", "", "whatever", 0},
		{"expansion goes negative", "one", "one two", -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wordCountReduction(tt.original, tt.simplified); got != tt.want {
				t.Errorf("wordCountReduction() = %v, want %v", got, tt.want)
			}
		})
	}
}
