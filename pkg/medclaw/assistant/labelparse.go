package assistant

import (
	"math"
	"regexp"
	"strings"
)

// LabelData is the structured result of parsing prescription label text.
// Fields that could not be extracted carry their documented defaults and
// a low per-field confidence.
type LabelData struct {
	Name             string             `json:"name"`
	Dosage           string             `json:"dosage"`
	Frequency        string             `json:"frequency"`
	Prescriber       string             `json:"prescriber"`
	Pharmacy         string             `json:"pharmacy"`
	Confidence       float64            `json:"confidence"`
	FieldConfidences map[string]float64 `json:"field_confidences"`
	NeedsReview      bool               `json:"needs_review"`
}

// reviewThreshold is the overall confidence below which a parsed label is
// flagged for manual review.
const reviewThreshold = 0.8

var medicationNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Lisinopril|Metformin|Amlodipine|Atorvastatin|Omeprazole|Sertraline|Simvastatin|Levothyroxine|Azithromycin|Amoxicillin)`),
	regexp.MustCompile(`([A-Z][a-z]+(?:in|ol|ide|ine|ate|pril|formin))`),
}

var dosagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?))`),
	regexp.MustCompile(`(?i)(\d+\s*milligrams?)`),
	regexp.MustCompile(`(?i)(\d+\s*micrograms?)`),
}

var frequencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(once\s+(?:daily|a\s+day|per\s+day))`),
	regexp.MustCompile(`(?i)(twice\s+(?:daily|a\s+day|per\s+day))`),
	regexp.MustCompile(`(?i)(three\s+times\s+(?:daily|a\s+day|per\s+day))`),
	regexp.MustCompile(`(?i)(\d+\s+times?\s+(?:daily|a\s+day|per\s+day))`),
	regexp.MustCompile(`(?i)(every\s+\d+\s+hours?)`),
	regexp.MustCompile(`(?i)(as\s+needed)`),
}

// Multi-word names allow single spaces only, so a name at the end of a
// line does not swallow the line below it.
var prescriberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Dr\.?[ \t]+|Doctor[ \t]+)([A-Z][a-z]+(?: [A-Z][a-z]+)*)`),
	regexp.MustCompile(`([A-Z][a-z]+(?: [A-Z][a-z]+)*)[ \t]+M\.?D\.?`),
}

var pharmacyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(CVS|Walgreens|Rite Aid|Pharmacy|Target Pharmacy|Walmart Pharmacy)`),
	regexp.MustCompile(`([A-Z][a-z]+\s+Pharmacy)`),
}

// ParseLabelText extracts structured medication fields from raw label
// text, such as the transcription returned by image analysis.
func ParseLabelText(raw string) *LabelData {
	name := firstMatch(raw, medicationNamePatterns)
	dosage := firstMatch(raw, dosagePatterns)
	frequency := firstMatch(raw, frequencyPatterns)
	prescriber := firstMatch(raw, prescriberPatterns)
	pharmacy := firstMatch(raw, pharmacyPatterns)

	if prescriber != "" {
		prescriber = "Dr. " + prescriber
	} else {
		prescriber = "Dr. Unknown"
	}
	if pharmacy == "" {
		pharmacy = "Unknown Pharmacy"
	}

	data := &LabelData{
		Name:       name,
		Dosage:     dosage,
		Frequency:  frequency,
		Prescriber: prescriber,
		Pharmacy:   pharmacy,
	}
	if data.Name == "" {
		data.Name = "Unknown Medication"
	}
	if data.Dosage == "" {
		data.Dosage = "Unknown dosage"
	}
	if data.Frequency == "" {
		data.Frequency = "As directed"
	}

	data.FieldConfidences = fieldConfidences(data)
	data.Confidence = overallConfidence(data.FieldConfidences)
	data.NeedsReview = data.Confidence < reviewThreshold
	return data
}

// firstMatch returns the first capture group of the first pattern that
// matches, trimmed.
func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// fieldConfidences scores each extracted field. Defaults and fields that
// look unlikely get a penalty score.
func fieldConfidences(d *LabelData) map[string]float64 {
	scores := map[string]float64{
		"name":       0.3,
		"dosage":     0.4,
		"frequency":  0.5,
		"prescriber": 0.4,
		"pharmacy":   0.3,
	}
	if d.Name != "" && d.Name != "Unknown Medication" {
		scores["name"] = 0.9
	}
	if strings.Contains(strings.ToLower(d.Dosage), "mg") {
		scores["dosage"] = 0.85
	}
	if d.Frequency != "" && d.Frequency != "As directed" {
		scores["frequency"] = 0.8
	}
	if strings.Contains(d.Prescriber, "Dr.") && d.Prescriber != "Dr. Unknown" {
		scores["prescriber"] = 0.7
	}
	if strings.Contains(d.Pharmacy, "Pharmacy") && d.Pharmacy != "Unknown Pharmacy" {
		scores["pharmacy"] = 0.8
	}
	return scores
}

// overallConfidence weights the medication name and dosage highest, since
// those two fields drive reminders and interaction checks.
func overallConfidence(fields map[string]float64) float64 {
	overall := fields["name"]*0.3 +
		fields["dosage"]*0.25 +
		fields["frequency"]*0.2 +
		fields["prescriber"]*0.15 +
		fields["pharmacy"]*0.1
	return math.Round(overall*100) / 100
}
