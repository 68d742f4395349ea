// service.go is the facade the rest of MedClaw talks to. A Service owns its
// own credential store, transport client and request queue, so tests (and
// any embedder) can build isolated instances instead of sharing globals.
package gemini

import (
	"context"
	"log/slog"
)

// DefaultModel is the model used when the config does not name one.
const DefaultModel = "gemini-1.5-flash"

// Config tunes a Service. The zero value is usable; empty fields fall back
// to package defaults.
type Config struct {
	// BaseURL is the API root. Empty selects the production endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the model name, e.g. "gemini-1.5-flash".
	Model string `yaml:"model"`

	// RequestsPerMinute is the client-side pacing quota. 0 uses the
	// free-tier default (15 rpm → one dispatch every 4s).
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Temperature is the default sampling temperature.
	Temperature float64 `yaml:"temperature"`

	// MaxOutputTokens caps the reply length. 0 lets the server decide.
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Model:             DefaultModel,
		RequestsPerMinute: DefaultRequestsPerMinute,
		Temperature:       0.7,
		MaxOutputTokens:   2048,
	}
}

// Service bundles the credential store, transport client and scheduler
// behind task-level operations. All calls share one FIFO queue and one rate
// budget.
type Service struct {
	cfg    Config
	store  *CredentialStore
	client *Client
	sched  *Scheduler
	logger *slog.Logger
}

// NewService wires a service from config. The store must have been
// initialized (or have keys set) by the caller.
func NewService(cfg Config, store *CredentialStore, logger *slog.Logger) *Service {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		store:  store,
		client: NewClient(cfg.BaseURL, store, logger),
		sched:  NewScheduler(IntervalForRPM(cfg.RequestsPerMinute), logger),
		logger: logger.With("component", "gemini-service"),
	}
}

// Credentials exposes the credential store for key management commands.
func (s *Service) Credentials() *CredentialStore { return s.store }

// Ready reports whether the service has an API key and can make calls.
func (s *Service) Ready() bool { return s.store.IsConfigured() }

func (s *Service) endpoint() string {
	return "models/" + s.cfg.Model + ":generateContent"
}

func (s *Service) defaultGenConfig() *GenerationConfig {
	cfg := &GenerationConfig{}
	if s.cfg.Temperature > 0 {
		t := s.cfg.Temperature
		cfg.Temperature = &t
	}
	if s.cfg.MaxOutputTokens > 0 {
		m := s.cfg.MaxOutputTokens
		cfg.MaxOutputTokens = &m
	}
	return cfg
}

// lowTempGenConfig is used by the domain helpers, which want consistent
// factual output over variety.
func (s *Service) lowTempGenConfig() *GenerationConfig {
	cfg := s.defaultGenConfig()
	t := 0.1
	cfg.Temperature = &t
	return cfg
}

// generate enqueues one generateContent call and blocks until it settles.
// Every network round trip in the package funnels through here.
func (s *Service) generate(ctx context.Context, contents []Content, genConfig *GenerationConfig) (*GenerateResponse, error) {
	if genConfig == nil {
		genConfig = s.defaultGenConfig()
	}

	var resp *GenerateResponse
	err := s.sched.Do(ctx, func(ctx context.Context) error {
		var sendErr error
		resp, sendErr = s.client.Send(ctx, s.endpoint(), generateRequest{
			Contents:         contents,
			GenerationConfig: genConfig,
		})
		return sendErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GenerateText is the single-shot variant with no session state. A nil
// genConfig uses the service defaults.
func (s *Service) GenerateText(ctx context.Context, prompt string, genConfig *GenerationConfig) (string, error) {
	resp, err := s.generate(ctx, []Content{TextContent(RoleUser, prompt)}, genConfig)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// AnalyzeImage sends a two-part message (text prompt + inline image data)
// and returns the model's description. data is base64-encoded image bytes.
func (s *Service) AnalyzeImage(ctx context.Context, data, mimeType, prompt string) (string, error) {
	if prompt == "" {
		prompt = imageAnalysisPrompt
	}
	msg := Content{
		Role: RoleUser,
		Parts: []Part{
			{Text: prompt},
			{InlineData: &InlineData{MIMEType: mimeType, Data: data}},
		},
	}
	resp, err := s.generate(ctx, []Content{msg}, s.lowTempGenConfig())
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// AnalyzeMedicationText extracts structured medication details from free
// text (e.g. OCR output from a label photo).
func (s *Service) AnalyzeMedicationText(ctx context.Context, text string) (string, error) {
	return s.GenerateText(ctx, medicationTextPrompt(text), s.lowTempGenConfig())
}

// CheckDrugInteractions asks for a plain-language explanation of potential
// interactions between the given medications.
func (s *Service) CheckDrugInteractions(ctx context.Context, medications []string) (string, error) {
	return s.GenerateText(ctx, interactionPrompt(medications), s.lowTempGenConfig())
}

// SimplifyDocument rewrites a medical document at the requested reading
// level. patient may be nil.
func (s *Service) SimplifyDocument(ctx context.Context, text string, docType DocumentType, level SimplificationLevel, patient *PatientContext) (string, error) {
	return s.GenerateText(ctx, simplificationPrompt(text, docType, level, patient), s.lowTempGenConfig())
}
