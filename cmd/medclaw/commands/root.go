// Package commands implements the MedClaw CLI commands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "medclaw",
		Short: "MedClaw - Medication Assistant",
		Long: `MedClaw is a medication assistant for patients and caregivers.
It answers medication questions, simplifies medical documents, checks
drug interactions against the RxNav database, and reads medication labels
from photos.

Examples:
  medclaw chat "Can I take ibuprofen with my blood pressure medicine?"
  medclaw simplify discharge.txt --type discharge_summary --level simple
  medclaw interactions warfarin aspirin
  medclaw review "metformin 1000mg once daily" --age 72
  medclaw scan label.jpg`,
		Version: version,
	}

	rootCmd.AddCommand(
		newChatCmd(),
		newSimplifyCmd(),
		newInteractionsCmd(),
		newReviewCmd(),
		newScanCmd(),
		newConfigCmd(),
		newSetupCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
