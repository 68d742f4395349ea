package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jholhewres/medclaw/pkg/medclaw/gemini"
	"github.com/spf13/cobra"
)

// newSimplifyCmd creates the `medclaw simplify` command.
func newSimplifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplify [file]",
		Short: "Rewrite a medical document in plain language",
		Long: `Rewrites a medical document at a patient-friendly reading level.
Reads the document from a file, or from stdin when no file is given.

Document types: lab_results, discharge_summary, medication_instructions,
radiology_report, pathology_report, consultation_note, general_medical.

Levels: basic (8th grade), intermediate (6th grade), simple (4th grade).

Examples:
  medclaw simplify discharge.txt --type discharge_summary --level simple
  cat labs.txt | medclaw simplify --type lab_results`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSimplify,
	}

	cmd.Flags().StringP("type", "t", string(gemini.DocGeneralMedical), "document type")
	cmd.Flags().StringP("level", "l", string(gemini.LevelIntermediate), "simplification level")
	cmd.Flags().Int("age", 0, "patient age, tailors the wording when set")
	cmd.Flags().String("education", "", "patient education level, e.g. 'high school'")
	return cmd
}

func runSimplify(cmd *cobra.Command, args []string) error {
	a, err := buildAssistant(cmd)
	if err != nil {
		return err
	}
	if err := requireKey(a); err != nil {
		return err
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	docType, _ := cmd.Flags().GetString("type")
	level, _ := cmd.Flags().GetString("level")
	age, _ := cmd.Flags().GetInt("age")
	education, _ := cmd.Flags().GetString("education")

	var patient *gemini.PatientContext
	if age > 0 || education != "" {
		patient = &gemini.PatientContext{Age: age, EducationLevel: education}
	}

	result, err := a.SimplifyDocument(cmd.Context(),
		text,
		gemini.DocumentType(docType),
		gemini.SimplificationLevel(level),
		patient,
	)
	if err != nil {
		return err
	}

	fmt.Println(result.SimplifiedText)
	fmt.Println()
	fmt.Println("---")
	fmt.Printf("Reading level:  %s\n", result.ReadingLevel)
	fmt.Printf("Confidence:     %.0f%%\n", result.ConfidenceScore*100)
	fmt.Printf("Words reduced:  %.1f%%\n", result.WordCountReduction)
	if len(result.KeyTermsExplained) > 0 {
		fmt.Printf("Terms explained: %s\n", strings.Join(result.KeyTermsExplained, ", "))
	}
	if result.UsedFallback {
		fmt.Println("Note: the language service was unavailable, so a basic")
		fmt.Println("term-replacement pass was used. Ask your care team about")
		fmt.Println("anything that is still unclear.")
	}
	return nil
}

// readInput reads the document from the named file or from stdin.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no input: pass a file or pipe text on stdin")
	}
	return string(data), nil
}
