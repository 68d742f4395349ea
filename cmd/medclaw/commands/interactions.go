package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newInteractionsCmd creates the `medclaw interactions` command.
func newInteractionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactions <medication> <medication> [medication...]",
		Short: "Check for drug-drug interactions",
		Long: `Checks the given medications for known interactions. Names are
validated against the RxNav drug database, documented interactions are
looked up, and the assistant adds a plain-language explanation.

This is informational only and no substitute for advice from your
pharmacist or doctor.

Examples:
  medclaw interactions warfarin aspirin
  medclaw interactions lisinopril ibuprofen metformin`,
		Args: cobra.MinimumNArgs(2),
		RunE: runInteractions,
	}
}

func runInteractions(cmd *cobra.Command, args []string) error {
	a, err := buildAssistant(cmd)
	if err != nil {
		return err
	}
	if err := requireKey(a); err != nil {
		return err
	}

	summary, err := a.CheckInteractions(cmd.Context(), args)
	if err != nil {
		return err
	}

	for _, match := range summary.Matches {
		if match.Valid {
			name := match.Name
			if name == "" {
				name = "rxcui " + match.RxCUI
			}
			fmt.Printf("  [ok] %s\n", name)
			continue
		}
		fmt.Println("  [??] not found in the drug database")
		if len(match.Suggestions) > 0 {
			fmt.Printf("       did you mean: %s\n", strings.Join(match.Suggestions, ", "))
		}
	}
	fmt.Println()

	if report := summary.Report; report != nil {
		if len(report.Interactions) == 0 {
			fmt.Println("No documented interactions found.")
		} else {
			fmt.Printf("%d documented interaction(s):\n\n", len(report.Interactions))
			for _, ix := range report.Interactions {
				fmt.Printf("  %s + %s [%s]\n", ix.Drug1, ix.Drug2, ix.Severity)
				fmt.Printf("    %s\n", ix.Description)
			}
		}
		fmt.Println()
	}

	if summary.Explanation != "" {
		fmt.Println(summary.Explanation)
	}
	return nil
}
