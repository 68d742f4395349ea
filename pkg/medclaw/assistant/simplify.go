package assistant

import (
	"sort"
	"strings"
	"time"

	"github.com/jholhewres/medclaw/pkg/medclaw/gemini"
)

// SimplificationResult holds a simplified document together with the
// metrics shown to the user alongside the text.
type SimplificationResult struct {
	OriginalText       string                     `json:"original_text"`
	SimplifiedText     string                     `json:"simplified_text"`
	ConfidenceScore    float64                    `json:"confidence_score"`
	ReadingLevel       string                     `json:"reading_level"`
	ProcessingTime     time.Duration              `json:"processing_time"`
	WordCountReduction float64                    `json:"word_count_reduction"`
	KeyTermsExplained  []string                   `json:"key_terms_explained"`
	DocumentType       gemini.DocumentType        `json:"document_type"`
	Level              gemini.SimplificationLevel `json:"level"`
	UsedFallback       bool                       `json:"used_fallback"`
}

// Confidence assigned to each simplification path. The API produces a
// faithful rewrite; the rule-based pass only swaps known terms.
const (
	apiConfidence      = 0.9
	fallbackConfidence = 0.6
)

// termReplacements maps clinical terms to plain-language equivalents for
// the rule-based fallback. Keys are matched case-insensitively, longest
// first so "diabetes mellitus" wins over "diabetes".
var termReplacements = map[string]string{
	"hypertension":             "high blood pressure",
	"diabetes mellitus":        "diabetes",
	"myocardial infarction":    "heart attack",
	"cerebrovascular accident": "stroke",
	"pneumonia":                "lung infection",
	"gastroenteritis":          "stomach flu",
	"hyperlipidemia":           "high cholesterol",
	"bradycardia":              "slow heart rate",
	"tachycardia":              "fast heart rate",
	"dyspnea":                  "shortness of breath",
	"cephalgia":                "headache",
	"pyrexia":                  "fever",
	"nausea":                   "feeling sick to your stomach",
	"vomiting":                 "throwing up",
	"diarrhea":                 "loose bowel movements",
	"constipation":             "difficulty having bowel movements",
	"edema":                    "swelling",
	"urticaria":                "hives or skin rash",
	"pruritus":                 "itching",
	"vertigo":                  "dizziness",
	"syncope":                  "fainting",
	"palpitations":             "feeling your heartbeat",
	"angina":                   "chest pain",
	"dysphagia":                "difficulty swallowing",
}

// replacementOrder lists the replacement keys longest-first so compound
// terms are rewritten before their substrings.
var replacementOrder = sortedByLengthDesc(termReplacements)

const simpleLevelFooter = "\n\nKey Terms Explained:\n" +
	"- If you see medical words you don't understand, ask your doctor or nurse to explain them.\n" +
	"- It's important to follow all instructions exactly as written.\n" +
	"- If you have questions or concerns, contact your healthcare provider."

// applySimplificationRules rewrites known clinical terms into plain
// language. At the simple level a standing guidance footer is appended.
func applySimplificationRules(text string, level gemini.SimplificationLevel) string {
	simplified := text
	for _, term := range replacementOrder {
		simplified = replaceInsensitive(simplified, term, termReplacements[term])
	}

	if level == gemini.LevelSimple {
		simplified += simpleLevelFooter
	}
	return simplified
}

// extractExplainedTerms reports which known terms were present in the
// original but no longer appear in the simplified text, capped at five.
func extractExplainedTerms(original, simplified string) []string {
	origLower := strings.ToLower(original)
	simpLower := strings.ToLower(simplified)

	var explained []string
	for _, term := range replacementOrder {
		if strings.Contains(origLower, term) && !strings.Contains(simpLower, term) {
			explained = append(explained, term)
			if len(explained) == 5 {
				break
			}
		}
	}
	return explained
}

// wordCountReduction returns the percentage drop in word count from
// original to simplified. Zero when the original is empty.
func wordCountReduction(original, simplified string) float64 {
	origWords := len(strings.Fields(original))
	if origWords == 0 {
		return 0
	}
	simpWords := len(strings.Fields(simplified))
	return float64(origWords-simpWords) / float64(origWords) * 100
}

// replaceInsensitive replaces every case-insensitive occurrence of old
// with new, preserving the rest of the text as-is.
func replaceInsensitive(s, old, new string) string {
	if old == "" {
		return s
	}
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)

	var b strings.Builder
	for {
		idx := strings.Index(lower, oldLower)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		b.WriteString(new)
		s = s[idx+len(old):]
		lower = lower[idx+len(oldLower):]
	}
}

// sortedByLengthDesc orders terms longest first, ties alphabetical, so
// the replacement order is deterministic.
func sortedByLengthDesc(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
