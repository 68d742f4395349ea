package assistant

import "testing"

func TestParseLabelTextCleanLabel(t *testing.T) {
	raw := "LISINOPRIL 10MG TABLETS\nTake once daily\nDr. Smith\nTarget Pharmacy"

	data := ParseLabelText(raw)
	if data.Name != "LISINOPRIL" {
		t.Errorf("Name = %q", data.Name)
	}
	if data.Dosage != "10MG" {
		t.Errorf("Dosage = %q", data.Dosage)
	}
	if data.Frequency != "once daily" {
		t.Errorf("Frequency = %q", data.Frequency)
	}
	if data.Prescriber != "Dr. Smith" {
		t.Errorf("Prescriber = %q", data.Prescriber)
	}
	if data.Pharmacy != "Target Pharmacy" {
		t.Errorf("Pharmacy = %q", data.Pharmacy)
	}
	if data.NeedsReview {
		t.Errorf("NeedsReview = true, confidence = %v", data.Confidence)
	}
	if data.Confidence < reviewThreshold {
		t.Errorf("Confidence = %v, want at least %v", data.Confidence, reviewThreshold)
	}
}

func TestParseLabelTextUnreadable(t *testing.T) {
	data := ParseLabelText("completely unreadable smudge")

	if data.Name != "Unknown Medication" {
		t.Errorf("Name = %q, want the unknown default", data.Name)
	}
	if data.Dosage != "Unknown dosage" {
		t.Errorf("Dosage = %q, want the unknown default", data.Dosage)
	}
	if data.Frequency != "As directed" {
		t.Errorf("Frequency = %q, want the default", data.Frequency)
	}
	if data.Prescriber != "Dr. Unknown" {
		t.Errorf("Prescriber = %q, want the default", data.Prescriber)
	}
	if data.Pharmacy != "Unknown Pharmacy" {
		t.Errorf("Pharmacy = %q, want the default", data.Pharmacy)
	}
	if !data.NeedsReview {
		t.Errorf("NeedsReview = false, confidence = %v", data.Confidence)
	}
}

func TestParseLabelTextSuffixHeuristic(t *testing.T) {
	// Not in the known-name list; the suffix rule should still catch it.
	data := ParseLabelText("Gabapentin 300 mg capsules, every 8 hours, refills at Walgreens")

	if data.Name != "Gabapentin" {
		t.Errorf("Name = %q, want suffix match", data.Name)
	}
	if data.Dosage != "300 mg" {
		t.Errorf("Dosage = %q", data.Dosage)
	}
	if data.Frequency != "every 8 hours" {
		t.Errorf("Frequency = %q", data.Frequency)
	}
	if data.Pharmacy != "Walgreens" {
		t.Errorf("Pharmacy = %q", data.Pharmacy)
	}
}

func TestParseLabelTextFieldConfidences(t *testing.T) {
	data := ParseLabelText("Metformin 500mg twice daily")

	if got := data.FieldConfidences["name"]; got != 0.9 {
		t.Errorf("name confidence = %v, want 0.9", got)
	}
	if got := data.FieldConfidences["dosage"]; got != 0.85 {
		t.Errorf("dosage confidence = %v, want 0.85", got)
	}
	if got := data.FieldConfidences["prescriber"]; got != 0.4 {
		t.Errorf("prescriber confidence = %v, want 0.4 for the default", got)
	}
	if data.Prescriber != "Dr. Unknown" {
		t.Errorf("Prescriber = %q", data.Prescriber)
	}
}

func TestParseLabelTextMissingFieldsNeedReview(t *testing.T) {
	data := ParseLabelText("Metformin")
	if !data.NeedsReview {
		t.Errorf("NeedsReview = false with only a name, confidence = %v", data.Confidence)
	}
}
