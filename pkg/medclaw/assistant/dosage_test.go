package assistant

import (
	"math"
	"strings"
	"testing"
)

func TestParseDose(t *testing.T) {
	tests := []struct {
		name     string
		dosage   string
		wantDose float64
		wantUnit string
		wantOK   bool
	}{
		{name: "plain mg", dosage: "10mg", wantDose: 10, wantUnit: "mg", wantOK: true},
		{name: "spaced decimal", dosage: "2.5 mg", wantDose: 2.5, wantUnit: "mg", wantOK: true},
		{name: "units normalized", dosage: "80 unit", wantDose: 80, wantUnit: "units", wantOK: true},
		{name: "iu normalized", dosage: "400 iu", wantDose: 400, wantUnit: "units", wantOK: true},
		{name: "uppercase", dosage: "500MG", wantDose: 500, wantUnit: "mg", wantOK: true},
		{name: "no number", dosage: "one tablet", wantOK: false},
		{name: "empty", dosage: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dose, unit, ok := parseDose(tt.dosage)
			if ok != tt.wantOK {
				t.Fatalf("parseDose(%q) ok = %v, want %v", tt.dosage, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if dose != tt.wantDose || unit != tt.wantUnit {
				t.Errorf("parseDose(%q) = %v %q, want %v %q", tt.dosage, dose, unit, tt.wantDose, tt.wantUnit)
			}
		})
	}
}

func TestAnalyzeDosage(t *testing.T) {
	tests := []struct {
		name           string
		med            Medication
		patient        PatientFactors
		wantDose       float64
		wantAdjustment bool
		wantReasonPart string
	}{
		{
			name:           "healthy adult keeps dose",
			med:            Medication{Name: "Lisinopril", Dosage: "10mg", Frequency: "once daily"},
			patient:        PatientFactors{Age: 45},
			wantDose:       10,
			wantAdjustment: false,
			wantReasonPart: "No adjustment needed",
		},
		{
			name:           "elderly patient dose lowered",
			med:            Medication{Name: "lisinopril", Dosage: "10mg"},
			patient:        PatientFactors{Age: 72},
			wantDose:       7.5,
			wantAdjustment: true,
			wantReasonPart: "elderly patient",
		},
		{
			name:           "metformin contraindicated in severe renal impairment",
			med:            Medication{Name: "metformin", Dosage: "1000mg"},
			patient:        PatientFactors{Age: 50, CreatinineClearance: 25},
			wantDose:       500, // zero dose clamped up to the range minimum
			wantAdjustment: true,
			wantReasonPart: "reduced kidney function",
		},
		{
			name:           "hepatic impairment lowers atorvastatin",
			med:            Medication{Name: "atorvastatin", Dosage: "40mg"},
			patient:        PatientFactors{Age: 50, LiverFunction: "moderate impairment"},
			wantDose:       20,
			wantAdjustment: true,
			wantReasonPart: "liver dysfunction",
		},
		{
			name:           "recommendation clamped to range minimum",
			med:            Medication{Name: "atorvastatin", Dosage: "10mg"},
			patient:        PatientFactors{Age: 50, LiverFunction: "severe impairment"},
			wantDose:       10, // 0.25 factor would give 2.5, below the 10 mg floor
			wantAdjustment: false,
			wantReasonPart: "No adjustment needed",
		},
		{
			name:           "unknown medication gets no recommendation",
			med:            Medication{Name: "obscuratol", Dosage: "5mg"},
			patient:        PatientFactors{},
			wantDose:       0,
			wantReasonPart: "Unable to analyze dosage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeDosage(tt.med, tt.patient)
			if math.Abs(got.RecommendedDose-tt.wantDose) > 0.01 {
				t.Errorf("recommended dose = %v, want %v", got.RecommendedDose, tt.wantDose)
			}
			if got.NeedsAdjustment != tt.wantAdjustment {
				t.Errorf("needs adjustment = %v, want %v", got.NeedsAdjustment, tt.wantAdjustment)
			}
			if !strings.Contains(got.AdjustmentReason, tt.wantReasonPart) {
				t.Errorf("reason %q missing %q", got.AdjustmentReason, tt.wantReasonPart)
			}
		})
	}
}

func TestWeightBasedDose(t *testing.T) {
	// Enoxaparin doses at 1 mg/kg, capped at 100 mg.
	if got := patientSpecificDose("enoxaparin", 60, PatientFactors{WeightKg: 70}); got != 70 {
		t.Errorf("enoxaparin at 70 kg = %v, want 70", got)
	}
	if got := patientSpecificDose("enoxaparin", 60, PatientFactors{WeightKg: 120}); got != 100 {
		t.Errorf("enoxaparin at 120 kg = %v, want capped at 100", got)
	}
}

func TestAnalyzeDosageUnknownDose(t *testing.T) {
	got := AnalyzeDosage(Medication{Name: "lisinopril", Dosage: "as directed"}, PatientFactors{})
	if got.Confidence != 0 {
		t.Errorf("unparseable dose should have zero confidence, got %v", got.Confidence)
	}
	if got.Unit != "unknown" {
		t.Errorf("unit = %q, want %q", got.Unit, "unknown")
	}
}

func TestDoseConfidenceGrowsWithData(t *testing.T) {
	sparse := doseConfidence("lisinopril", PatientFactors{})
	full := doseConfidence("lisinopril", PatientFactors{
		Age: 70, WeightKg: 80, CreatinineClearance: 55, LiverFunction: "mild impairment",
	})
	if full <= sparse {
		t.Errorf("confidence with full data (%v) should exceed sparse (%v)", full, sparse)
	}
	if full > 1.0 {
		t.Errorf("confidence %v exceeds 1.0", full)
	}
}

func TestParseMedicationEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  Medication
	}{
		{
			name:  "full entry",
			entry: "metformin 1000mg twice daily",
			want:  Medication{Name: "metformin", Dosage: "1000mg", Frequency: "twice daily"},
		},
		{
			name:  "no frequency",
			entry: "aspirin 81mg",
			want:  Medication{Name: "aspirin", Dosage: "81mg"},
		},
		{
			name:  "name only",
			entry: "  lisinopril  ",
			want:  Medication{Name: "lisinopril"},
		},
		{
			name:  "spaced dose",
			entry: "Lisinopril 2.5 mg once daily",
			want:  Medication{Name: "Lisinopril", Dosage: "2.5 mg", Frequency: "once daily"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMedicationEntry(tt.entry); got != tt.want {
				t.Errorf("ParseMedicationEntry(%q) = %+v, want %+v", tt.entry, got, tt.want)
			}
		})
	}
}

func TestFormatDose(t *testing.T) {
	if got := FormatDose(2.5, "mg"); got != "2.5 mg" {
		t.Errorf("FormatDose(2.5) = %q", got)
	}
	if got := FormatDose(1000, "mg"); got != "1000 mg" {
		t.Errorf("FormatDose(1000) = %q", got)
	}
}
