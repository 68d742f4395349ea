package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jholhewres/medclaw/pkg/medclaw/assistant"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the `medclaw config` command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and the API key",
		Long: `Manages MedClaw configuration. The API key lives in the OS keyring,
never in the config file.

Examples:
  medclaw config show
  medclaw config init
  medclaw config set-key
  medclaw config clear-key`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
		newConfigSetKeyCmd(),
		newConfigClearKeyCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("rendering config: %w", err)
			}
			fmt.Print(string(data))

			a := assistant.New(cfg, newLogger(cmd, cfg))
			if a.Ready() {
				fmt.Println("\n# API key: **** (OS keyring)")
			} else {
				fmt.Println("\n# API key: not set (run 'medclaw config set-key')")
			}
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := assistant.DefaultConfigPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists; edit it or delete it first", path)
			}
			if err := assistant.SaveConfigToFile(assistant.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Printf("Default configuration written to %s\n", path)
			return nil
		},
	}
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the Gemini API key in the OS keyring",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildAssistant(cmd)
			if err != nil {
				return err
			}

			key, err := readHiddenLine("Gemini API key (hidden input): ")
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("no key entered")
			}

			if err := a.Gemini().Credentials().SetKey(key); err != nil {
				return fmt.Errorf("storing key: %w", err)
			}
			fmt.Println("API key stored in the OS keyring.")
			return nil
		},
	}
}

func newConfigClearKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildAssistant(cmd)
			if err != nil {
				return err
			}
			if err := a.Gemini().Credentials().ClearKey(); err != nil {
				return fmt.Errorf("clearing key: %w", err)
			}
			fmt.Println("API key removed.")
			return nil
		},
	}
}

// readHiddenLine reads a secret from the terminal without echoing. Falls
// back to plain stdin for piped input.
func readHiddenLine(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	secret, err := term.ReadPassword(fd)
	if err != nil {
		var buf [1024]byte
		n, readErr := os.Stdin.Read(buf[:])
		if readErr != nil {
			return "", fmt.Errorf("reading input: %w", readErr)
		}
		secret = buf[:n]
	}
	fmt.Println()

	return strings.TrimSpace(string(secret)), nil
}
