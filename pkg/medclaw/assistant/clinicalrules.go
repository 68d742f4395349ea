// clinicalrules.go flags medication safety issues from a fixed rule set:
// age-related risks, condition contraindications, pregnancy categories,
// excessive daily doses and suboptimal frequencies.
package assistant

import (
	"fmt"
	"strings"
)

// AlertSeverity grades how urgent a clinical alert is.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityModerate AlertSeverity = "moderate"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// rank orders severities for comparison; higher is worse.
func (s AlertSeverity) rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ClinicalAlert is one safety finding for a medication.
type ClinicalAlert struct {
	MedicationName string        `json:"medication_name"`
	Type           string        `json:"alert_type"`
	Severity       AlertSeverity `json:"severity"`
	Message        string        `json:"message"`
	Recommendation string        `json:"recommendation"`
}

type ageRule struct {
	severity       AlertSeverity
	message        string
	recommendation string
}

// elderlyRules fire for patients 65 and older.
var elderlyRules = map[string]ageRule{
	"diphenhydramine": {
		severity:       SeverityHigh,
		message:        "Anticholinergic medication with increased fall and confusion risk in older adults",
		recommendation: "Consider a safer alternative such as loratadine",
	},
	"diazepam": {
		severity:       SeverityModerate,
		message:        "Long-acting benzodiazepine accumulates in older adults",
		recommendation: "Consider a shorter-acting agent or dose reduction",
	},
}

// pediatricRules fire for patients under 18.
var pediatricRules = map[string]ageRule{
	"aspirin": {
		severity:       SeverityCritical,
		message:        "Aspirin in children is associated with Reye's syndrome",
		recommendation: "Use acetaminophen or ibuprofen instead",
	},
}

// conditionContraindications maps a condition to medications that should be
// avoided or used with caution when the patient has it.
var conditionContraindications = map[string]map[string]ageRule{
	"kidney disease": {
		"ibuprofen": {
			severity:       SeverityHigh,
			message:        "NSAIDs can worsen kidney function",
			recommendation: "Avoid NSAIDs; consider acetaminophen for pain",
		},
		"metformin": {
			severity:       SeverityModerate,
			message:        "Metformin requires dose adjustment in kidney disease",
			recommendation: "Verify dose against current kidney function",
		},
	},
	"heart failure": {
		"ibuprofen": {
			severity:       SeverityHigh,
			message:        "NSAIDs cause fluid retention and can worsen heart failure",
			recommendation: "Avoid NSAIDs in heart failure",
		},
	},
	"asthma": {
		"aspirin": {
			severity:       SeverityModerate,
			message:        "Aspirin can trigger bronchospasm in sensitive patients",
			recommendation: "Monitor for breathing difficulty; consider alternatives",
		},
	},
}

// pregnancyCategories holds FDA pregnancy categories for medications we
// recognize. Only categories D and X raise an alert.
var pregnancyCategories = map[string]string{
	"warfarin":   "X",
	"lisinopril": "D",
	"ibuprofen":  "C",
}

// maxDailyDoses caps total daily intake in mg for common medications.
var maxDailyDoses = map[string]float64{
	"acetaminophen": 4000,
	"ibuprofen":     3200,
	"aspirin":       4000,
	"lisinopril":    40,
	"metformin":     2550,
}

// MedicationAlerts runs every rule category against one medication and
// returns the alerts that fired.
func MedicationAlerts(med Medication, patient PatientFactors) []ClinicalAlert {
	name := strings.ToLower(strings.TrimSpace(med.Name))
	var alerts []ClinicalAlert

	if a, ok := ageAlert(name, patient.Age); ok {
		alerts = append(alerts, a)
	}
	alerts = append(alerts, conditionAlerts(name, patient.Conditions)...)
	if patient.Pregnant {
		if a, ok := pregnancyAlert(name); ok {
			alerts = append(alerts, a)
		}
	}
	if a, ok := dailyDoseAlert(name, med); ok {
		alerts = append(alerts, a)
	}
	if a, ok := frequencyAlert(name, med.Frequency); ok {
		alerts = append(alerts, a)
	}
	return alerts
}

func ageAlert(name string, age int) (ClinicalAlert, bool) {
	var rule ageRule
	var ok bool
	switch {
	case age >= 65:
		rule, ok = elderlyRules[name]
	case age > 0 && age < 18:
		rule, ok = pediatricRules[name]
	}
	if !ok {
		return ClinicalAlert{}, false
	}
	return ClinicalAlert{
		MedicationName: name,
		Type:           "age_related",
		Severity:       rule.severity,
		Message:        rule.message,
		Recommendation: rule.recommendation,
	}, true
}

func conditionAlerts(name string, conditions []string) []ClinicalAlert {
	var alerts []ClinicalAlert
	for _, condition := range conditions {
		rules, ok := conditionContraindications[strings.ToLower(strings.TrimSpace(condition))]
		if !ok {
			continue
		}
		rule, ok := rules[name]
		if !ok {
			continue
		}
		alerts = append(alerts, ClinicalAlert{
			MedicationName: name,
			Type:           "condition_contraindication",
			Severity:       rule.severity,
			Message:        rule.message,
			Recommendation: rule.recommendation,
		})
	}
	return alerts
}

func pregnancyAlert(name string) (ClinicalAlert, bool) {
	category, ok := pregnancyCategories[name]
	if !ok || (category != "D" && category != "X") {
		return ClinicalAlert{}, false
	}
	severity := SeverityModerate
	if category == "X" {
		severity = SeverityHigh
	}
	return ClinicalAlert{
		MedicationName: name,
		Type:           "pregnancy_safety",
		Severity:       severity,
		Message:        fmt.Sprintf("Pregnancy category %s medication", category),
		Recommendation: "Discuss pregnancy-safe alternatives with the prescriber",
	}, true
}

// dailyDoseAlert compares the single-dose strength against the medication's
// maximum daily dose. Frequency multipliers are not applied here; a single
// dose over the daily cap is already excessive.
func dailyDoseAlert(name string, med Medication) (ClinicalAlert, bool) {
	maxDaily, ok := maxDailyDoses[name]
	if !ok {
		return ClinicalAlert{}, false
	}
	dose, unit, ok := parseDose(med.Dosage)
	if !ok || unit != "mg" || dose <= maxDaily {
		return ClinicalAlert{}, false
	}
	return ClinicalAlert{
		MedicationName: name,
		Type:           "dosage_excessive",
		Severity:       SeverityHigh,
		Message:        fmt.Sprintf("Dose exceeds the maximum daily amount of %s", FormatDose(maxDaily, "mg")),
		Recommendation: "Verify the dose with the prescriber",
	}, true
}

func frequencyAlert(name, frequency string) (ClinicalAlert, bool) {
	if name != "metformin" || !strings.Contains(strings.ToLower(frequency), "once daily") {
		return ClinicalAlert{}, false
	}
	return ClinicalAlert{
		MedicationName: name,
		Type:           "frequency_suboptimal",
		Severity:       SeverityModerate,
		Message:        "Metformin is typically dosed twice daily for better tolerance",
		Recommendation: "Ask the prescriber about splitting the dose",
	}, true
}

// MedicationReview is the combined safety and dosing assessment for a
// medication list.
type MedicationReview struct {
	Alerts          []ClinicalAlert          `json:"alerts"`
	Recommendations []DoseRecommendation     `json:"dose_recommendations"`
	SeverityCounts  map[AlertSeverity]int    `json:"severity_counts"`
	HighestSeverity map[string]AlertSeverity `json:"highest_severity"`
	OverallRisk     AlertSeverity            `json:"overall_risk"`
}

// ReviewMedications runs the clinical rules and dose analysis over a whole
// medication list.
func ReviewMedications(meds []Medication, patient PatientFactors) *MedicationReview {
	review := &MedicationReview{
		SeverityCounts:  make(map[AlertSeverity]int),
		HighestSeverity: make(map[string]AlertSeverity),
	}

	for _, med := range meds {
		name := strings.ToLower(strings.TrimSpace(med.Name))
		highest := AlertSeverity("none")
		for _, alert := range MedicationAlerts(med, patient) {
			review.Alerts = append(review.Alerts, alert)
			review.SeverityCounts[alert.Severity]++
			if alert.Severity.rank() > highest.rank() {
				highest = alert.Severity
			}
		}
		review.HighestSeverity[name] = highest
		review.Recommendations = append(review.Recommendations, AnalyzeDosage(med, patient))
	}

	review.OverallRisk = overallRisk(review.SeverityCounts)
	return review
}

func overallRisk(counts map[AlertSeverity]int) AlertSeverity {
	switch {
	case counts[SeverityCritical] > 0:
		return SeverityCritical
	case counts[SeverityHigh] > 0:
		return SeverityHigh
	case counts[SeverityModerate] > 2:
		return SeverityHigh
	case counts[SeverityModerate] > 0:
		return SeverityModerate
	default:
		return SeverityLow
	}
}
