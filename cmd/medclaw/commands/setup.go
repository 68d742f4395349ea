package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jholhewres/medclaw/pkg/medclaw/assistant"
	"github.com/jholhewres/medclaw/pkg/medclaw/gemini"
	"github.com/spf13/cobra"
)

// newSetupCmd creates the `medclaw setup` wizard.
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup wizard",
		Long: `Starts an interactive wizard to create your initial configuration.
Asks for the assistant name, model and request pacing, and stores your
Gemini API key in the OS keyring — never in a file.

Examples:
  medclaw setup`,
		RunE: runSetup,
	}
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg := assistant.DefaultConfig()

	var (
		apiKey     string
		rpm        = strconv.Itoa(cfg.Gemini.RequestsPerMinute)
		useRxNav   = cfg.RxNav.Enabled
		confirmed  = true
		targetPath = assistant.DefaultConfigPath()
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Assistant name").
				Value(&cfg.Name),

			huh.NewSelect[string]().
				Title("Gemini model").
				Options(
					huh.NewOption("gemini-1.5-flash (fast, free tier)", "gemini-1.5-flash"),
					huh.NewOption("gemini-1.5-pro (higher quality)", "gemini-1.5-pro"),
				).
				Value(&cfg.Gemini.Model),

			huh.NewInput().
				Title("Requests per minute").
				Description("Free tier allows 15. Lower this if you share the quota.").
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}).
				Value(&rpm),

			huh.NewConfirm().
				Title("Check medications against the RxNav drug database?").
				Value(&useRxNav),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API key").
				Description("Stored in the OS keyring, never written to disk. Leave empty to set later.").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Save configuration to %s?", targetPath)).
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if !confirmed {
		fmt.Println("Setup cancelled. Nothing was written.")
		return nil
	}

	cfg.Gemini.RequestsPerMinute, _ = strconv.Atoi(strings.TrimSpace(rpm))
	cfg.RxNav.Enabled = useRxNav

	if _, err := os.Stat(targetPath); err == nil {
		overwrite := false
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("%s already exists. Overwrite?", targetPath)).
			Value(&overwrite)
		if err := confirm.Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Setup cancelled. Existing file kept.")
			return nil
		}
	}

	if err := assistant.SaveConfigToFile(cfg, targetPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration written to %s\n", targetPath)

	if apiKey != "" {
		store := gemini.NewCredentialStore(newLogger(cmd, cfg))
		if err := store.SetKey(apiKey); err != nil {
			fmt.Printf("Could not store the API key in the keyring: %v\n", err)
			fmt.Println("Set it later with: medclaw config set-key")
		} else {
			fmt.Println("API key stored in the OS keyring.")
		}
	} else {
		fmt.Println("No API key set. Run 'medclaw config set-key' before first use.")
	}

	fmt.Println()
	fmt.Println("Try it out:")
	fmt.Println(`  medclaw chat "What is metformin used for?"`)
	return nil
}
