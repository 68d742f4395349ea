package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jholhewres/medclaw/pkg/medclaw/assistant"
	"github.com/spf13/cobra"
)

// resolveConfig loads the config named by --config, or searches the
// standard locations. No config file at all is fine: defaults apply.
func resolveConfig(cmd *cobra.Command) (*assistant.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		path = assistant.FindConfigFile()
	}
	if path == "" {
		return assistant.DefaultConfig(), nil
	}

	cfg, err := assistant.LoadConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// newLogger builds the slog logger from config, honoring --verbose.
func newLogger(cmd *cobra.Command, cfg *assistant.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	logLevel := slog.LevelInfo
	switch {
	case verbose || cfg.Logging.Level == "debug":
		logLevel = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		logLevel = slog.LevelWarn
	case cfg.Logging.Level == "error":
		logLevel = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}
	return slog.New(handler)
}

// buildAssistant wires the assistant from the resolved config.
func buildAssistant(cmd *cobra.Command) (*assistant.Assistant, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return assistant.New(cfg, newLogger(cmd, cfg)), nil
}

// requireKey fails fast with setup instructions when no API key is stored.
func requireKey(a *assistant.Assistant) error {
	if !a.Ready() {
		return fmt.Errorf("no API key configured; run 'medclaw setup' or 'medclaw config set-key'")
	}
	return nil
}
