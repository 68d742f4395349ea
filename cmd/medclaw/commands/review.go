package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jholhewres/medclaw/pkg/medclaw/assistant"
)

// newReviewCmd creates the `medclaw review` command.
func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <medication entry> [entry...]",
		Short: "Review a medication list for safety and dosing issues",
		Long: `Runs each medication through a local rule set: age-related risks,
condition contraindications, pregnancy safety, excessive doses and
suboptimal frequencies, plus a dose recommendation adjusted for the
patient factors you supply. Everything runs offline against built-in
reference tables.

Each entry is one quoted string: name, dose, then frequency.

This is informational only and no substitute for advice from your
pharmacist or doctor.

Examples:
  medclaw review "metformin 1000mg once daily" --age 72 --creatinine 45
  medclaw review "aspirin 81mg" "ibuprofen 400mg" --age 9
  medclaw review "lisinopril 10mg once daily" --pregnant`,
		Args: cobra.MinimumNArgs(1),
		RunE: runReview,
	}

	cmd.Flags().Int("age", 0, "patient age in years")
	cmd.Flags().Float64("weight", 0, "patient weight in kg")
	cmd.Flags().Float64("creatinine", 0, "creatinine clearance in ml/min")
	cmd.Flags().String("liver", "", "liver function, e.g. \"mild impairment\"")
	cmd.Flags().Bool("pregnant", false, "patient is pregnant")
	cmd.Flags().StringSlice("condition", nil, "known condition (repeatable), e.g. \"kidney disease\"")

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	var patient assistant.PatientFactors
	patient.Age, _ = cmd.Flags().GetInt("age")
	patient.Pregnant, _ = cmd.Flags().GetBool("pregnant")
	patient.WeightKg, _ = cmd.Flags().GetFloat64("weight")
	patient.CreatinineClearance, _ = cmd.Flags().GetFloat64("creatinine")
	patient.LiverFunction, _ = cmd.Flags().GetString("liver")
	patient.Conditions, _ = cmd.Flags().GetStringSlice("condition")

	meds := make([]assistant.Medication, 0, len(args))
	for _, entry := range args {
		med := assistant.ParseMedicationEntry(entry)
		if med.Name == "" {
			return fmt.Errorf("could not read a medication name from %q", entry)
		}
		meds = append(meds, med)
	}

	review := assistant.ReviewMedications(meds, patient)

	if len(review.Alerts) == 0 {
		fmt.Println("No safety alerts for this medication list.")
	} else {
		fmt.Printf("%d safety alert(s):\n\n", len(review.Alerts))
		for _, alert := range review.Alerts {
			fmt.Printf("  [%s] %s: %s\n", strings.ToUpper(string(alert.Severity)), alert.MedicationName, alert.Message)
			fmt.Printf("    -> %s\n", alert.Recommendation)
		}
	}
	fmt.Println()

	for _, rec := range review.Recommendations {
		if rec.Unit == "unknown" {
			continue
		}
		if rec.NeedsAdjustment {
			fmt.Printf("  %s: %s -> consider %s (%s)\n",
				rec.MedicationName,
				assistant.FormatDose(rec.CurrentDose, rec.Unit),
				assistant.FormatDose(rec.RecommendedDose, rec.Unit),
				rec.AdjustmentReason)
		} else {
			fmt.Printf("  %s: %s looks appropriate\n",
				rec.MedicationName, assistant.FormatDose(rec.CurrentDose, rec.Unit))
		}
	}
	fmt.Println()

	fmt.Printf("Overall risk: %s\n", review.OverallRisk)
	fmt.Println("Discuss any changes with your pharmacist or doctor.")
	return nil
}
