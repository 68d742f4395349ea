// dosage.go analyzes medication doses against patient factors. Everything
// here is local rule-table logic; no API call is involved, so it works
// offline and its output is deterministic.
package assistant

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Medication is one entry on a patient's medication list, as parsed from a
// label scan or entered by hand.
type Medication struct {
	Name      string
	Dosage    string
	Frequency string
}

// PatientFactors carries the clinical data that drives dose adjustment and
// appropriateness checks. Zero values mean "unknown" and skip the
// corresponding check.
type PatientFactors struct {
	Age                 int
	WeightKg            float64
	CreatinineClearance float64 // ml/min
	LiverFunction       string  // e.g. "mild impairment"
	Pregnant            bool
	Conditions          []string // e.g. "kidney disease", "asthma"
}

// DoseRecommendation is the result of analyzing one medication's dose.
type DoseRecommendation struct {
	MedicationName   string  `json:"medication_name"`
	CurrentDose      float64 `json:"current_dose"`
	RecommendedDose  float64 `json:"recommended_dose"`
	Unit             string  `json:"unit"`
	AdjustmentReason string  `json:"adjustment_reason"`
	AdjustmentFactor float64 `json:"adjustment_factor"`
	Confidence       float64 `json:"confidence"`
	NeedsAdjustment  bool    `json:"needs_adjustment"`
	PercentChange    float64 `json:"percentage_change"`
}

type doseRange struct {
	min, max, typical float64
	unit              string
}

// impairmentFactors are dose multipliers per impairment severity.
type impairmentFactors struct {
	severe, moderate, mild float64
}

type weightRule struct {
	dosePerKg, maxDose float64
	unit               string
}

// standardDoseRanges bounds recommendations for the medications we have
// reference data for. Unknown medications get no recommendation.
var standardDoseRanges = map[string]doseRange{
	"lisinopril":   {min: 2.5, max: 40, typical: 10, unit: "mg"},
	"metformin":    {min: 500, max: 2550, typical: 1000, unit: "mg"},
	"atorvastatin": {min: 10, max: 80, typical: 20, unit: "mg"},
	"amlodipine":   {min: 2.5, max: 10, typical: 5, unit: "mg"},
	"omeprazole":   {min: 10, max: 40, typical: 20, unit: "mg"},
}

// renalAdjustments scales doses by creatinine clearance. A severe factor
// of 0 means the drug is contraindicated at that level of impairment.
var renalAdjustments = map[string]impairmentFactors{
	"metformin":    {severe: 0, moderate: 0.5, mild: 0.75},
	"lisinopril":   {severe: 0.5, moderate: 0.75, mild: 0.9},
	"atorvastatin": {severe: 0.5, moderate: 0.75, mild: 1.0},
}

var hepaticAdjustments = map[string]impairmentFactors{
	"atorvastatin": {severe: 0.25, moderate: 0.5, mild: 0.75},
	"omeprazole":   {severe: 0.5, moderate: 0.75, mild: 1.0},
}

// ageAdjustments holds start-lower factors for elderly (65+) and pediatric
// (<18) patients.
var ageAdjustments = map[string]struct{ elderly, pediatric float64 }{
	"lisinopril": {elderly: 0.75, pediatric: 0.5},
	"metformin":  {elderly: 0.8, pediatric: 1.0},
}

var weightBasedDosing = map[string]weightRule{
	"enoxaparin": {dosePerKg: 1.0, maxDose: 100, unit: "mg"},
	"heparin":    {dosePerKg: 80, maxDose: 10000, unit: "units"},
}

// dosePattern matches "10mg", "2.5 mg", "1000 mcg", "80 units", "5 ml".
var dosePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mg|mcg|g|ml|units?|meq|iu)`)

// AnalyzeDosage checks one medication's dose against the patient's factors
// and returns an adjusted recommendation. Medications without reference
// data, or with an unparseable dose, get a zero-confidence
// no-recommendation result.
func AnalyzeDosage(med Medication, patient PatientFactors) DoseRecommendation {
	name := strings.ToLower(strings.TrimSpace(med.Name))

	currentDose, unit, ok := parseDose(med.Dosage)
	if !ok {
		return noRecommendation(name)
	}
	if _, known := standardDoseRanges[name]; !known {
		return noRecommendation(name)
	}

	recommended := patientSpecificDose(name, currentDose, patient)

	rec := DoseRecommendation{
		MedicationName:   name,
		CurrentDose:      currentDose,
		RecommendedDose:  recommended,
		Unit:             unit,
		AdjustmentReason: adjustmentReason(name, patient, recommended, currentDose),
		AdjustmentFactor: 1.0,
		Confidence:       doseConfidence(name, patient),
		NeedsAdjustment:  math.Abs(currentDose-recommended) > 0.1,
	}
	if currentDose > 0 {
		rec.AdjustmentFactor = recommended / currentDose
		rec.PercentChange = (recommended - currentDose) / currentDose * 100
	}
	return rec
}

// ParseMedicationEntry splits a free-form entry like
// "metformin 1000mg twice daily" into name, dosage and frequency. The
// dose match is the divider; entries without one become a bare name.
func ParseMedicationEntry(entry string) Medication {
	entry = strings.TrimSpace(entry)
	loc := dosePattern.FindStringIndex(entry)
	if loc == nil {
		return Medication{Name: entry}
	}
	return Medication{
		Name:      strings.TrimSpace(entry[:loc[0]]),
		Dosage:    entry[loc[0]:loc[1]],
		Frequency: strings.TrimSpace(entry[loc[1]:]),
	}
}

// parseDose extracts the numeric dose and unit from a dosage string.
// "iu" and "unit" normalize to "units".
func parseDose(dosage string) (float64, string, bool) {
	m := dosePattern.FindStringSubmatch(dosage)
	if m == nil {
		return 0, "", false
	}
	dose, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	unit := strings.ToLower(m[2])
	if unit == "unit" || unit == "iu" {
		unit = "units"
	}
	return dose, unit, true
}

// patientSpecificDose applies age, weight, renal and hepatic adjustments in
// order, then clamps to the medication's safe range.
func patientSpecificDose(name string, currentDose float64, patient PatientFactors) float64 {
	dose := currentDose

	if patient.Age > 0 {
		dose *= ageFactor(name, patient.Age)
	}
	if rule, ok := weightBasedDosing[name]; ok && patient.WeightKg > 0 {
		dose = rule.dosePerKg * patient.WeightKg
		if rule.maxDose > 0 && dose > rule.maxDose {
			dose = rule.maxDose
		}
	}
	if patient.CreatinineClearance > 0 {
		dose *= renalFactor(name, patient.CreatinineClearance)
	}
	if patient.LiverFunction != "" {
		dose *= hepaticFactor(name, patient.LiverFunction)
	}

	return clampToRange(name, dose)
}

func ageFactor(name string, age int) float64 {
	rules, ok := ageAdjustments[name]
	if !ok {
		return 1.0
	}
	switch {
	case age >= 65:
		return rules.elderly
	case age < 18:
		return rules.pediatric
	default:
		return 1.0
	}
}

func renalFactor(name string, creatinineClearance float64) float64 {
	rules, ok := renalAdjustments[name]
	if !ok {
		rules = impairmentFactors{severe: 0.25, moderate: 0.5, mild: 0.75}
	}
	switch {
	case creatinineClearance < 30:
		return rules.severe
	case creatinineClearance < 60:
		return rules.moderate
	case creatinineClearance < 90:
		return rules.mild
	default:
		return 1.0
	}
}

func hepaticFactor(name, liverFunction string) float64 {
	rules, ok := hepaticAdjustments[name]
	if !ok {
		rules = impairmentFactors{severe: 0.25, moderate: 0.5, mild: 0.75}
	}
	lf := strings.ToLower(liverFunction)
	switch {
	case strings.Contains(lf, "severe"):
		return rules.severe
	case strings.Contains(lf, "moderate"):
		return rules.moderate
	case strings.Contains(lf, "mild"):
		return rules.mild
	default:
		return 1.0
	}
}

// clampToRange keeps the recommendation inside the medication's documented
// min/max dose.
func clampToRange(name string, dose float64) float64 {
	r, ok := standardDoseRanges[name]
	if !ok {
		return dose
	}
	if dose < r.min {
		return r.min
	}
	if dose > r.max {
		return r.max
	}
	return dose
}

// adjustmentReason names the patient factors that drove the change.
func adjustmentReason(name string, patient PatientFactors, recommended, current float64) string {
	if math.Abs(recommended-current) < 0.1 {
		return "No adjustment needed"
	}

	var reasons []string
	switch {
	case patient.Age >= 65:
		reasons = append(reasons, "elderly patient")
	case patient.Age > 0 && patient.Age < 18:
		reasons = append(reasons, "pediatric patient")
	}
	if patient.CreatinineClearance > 0 && patient.CreatinineClearance < 60 {
		reasons = append(reasons, "reduced kidney function")
	}
	if strings.Contains(strings.ToLower(patient.LiverFunction), "impair") {
		reasons = append(reasons, "liver dysfunction")
	}
	if _, ok := weightBasedDosing[name]; ok && patient.WeightKg > 0 {
		reasons = append(reasons, "weight-based dosing")
	}

	if len(reasons) == 0 {
		return "Standard dose optimization"
	}
	return "Adjustment for " + strings.Join(reasons, ", ")
}

// doseConfidence grows with the amount of patient data available.
func doseConfidence(name string, patient PatientFactors) float64 {
	confidence := 0.5
	if patient.Age > 0 {
		confidence += 0.1
	}
	if patient.WeightKg > 0 {
		confidence += 0.1
	}
	if patient.CreatinineClearance > 0 {
		confidence += 0.15
	}
	if patient.LiverFunction != "" {
		confidence += 0.1
	}
	if _, ok := standardDoseRanges[name]; ok {
		confidence += 0.05
	}
	return math.Min(confidence, 1.0)
}

func noRecommendation(name string) DoseRecommendation {
	return DoseRecommendation{
		MedicationName:   name,
		Unit:             "unknown",
		AdjustmentReason: "Unable to analyze dosage",
		AdjustmentFactor: 1.0,
	}
}

// FormatDose renders a dose value without trailing zeros, e.g. "2.5 mg".
func FormatDose(dose float64, unit string) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", dose), "0"), ".") + " " + unit
}
