// Package assistant is the application layer: it loads configuration, wires
// the Gemini service and the RxNav client together, and applies the
// caller-level policies (rate-limit placeholders, rule-based simplification
// fallback) that keep the front end responsive when the API misbehaves.
package assistant

import (
	"github.com/jholhewres/medclaw/pkg/medclaw/gemini"
)

// Config holds all assistant configuration.
type Config struct {
	// Name is the assistant name shown in the CLI.
	Name string `yaml:"name"`

	// Gemini configures the generative API client.
	Gemini gemini.Config `yaml:"gemini"`

	// RxNav configures the drug-database client.
	RxNav RxNavConfig `yaml:"rxnav"`

	// Session configures chat sessions.
	Session SessionConfig `yaml:"session"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// RxNavConfig configures the RxNav drug-database client.
type RxNavConfig struct {
	// Enabled toggles RxNav lookups; when off, interaction checks go to
	// the model alone.
	Enabled bool `yaml:"enabled"`

	// BaseURL overrides the public endpoint (tests, mirrors).
	BaseURL string `yaml:"base_url"`
}

// SessionConfig configures chat sessions.
type SessionConfig struct {
	// MaxHistory bounds the session history in messages; oldest messages
	// are dropped past the limit. 0 means unbounded.
	MaxHistory int `yaml:"max_history"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns the out-of-the-box configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:   "MedClaw",
		Gemini: gemini.DefaultConfig(),
		RxNav: RxNavConfig{
			Enabled: true,
		},
		Session: SessionConfig{
			MaxHistory: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
