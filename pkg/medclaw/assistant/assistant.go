package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jholhewres/medclaw/pkg/medclaw/gemini"
	"github.com/jholhewres/medclaw/pkg/medclaw/rxnav"
)

// RateLimitNotice is returned in place of model output when the request
// quota is exhausted. Chat and task helpers degrade to this text instead
// of failing the interaction.
const RateLimitNotice = "I'm getting a lot of questions right now. Please wait a moment and try again."

// Assistant wires the Gemini service and the RxNav client together and
// applies the user-facing degradation policies on top of them.
type Assistant struct {
	cfg    *Config
	gemini *gemini.Service
	rxnav  *rxnav.Client
	logger *slog.Logger
}

// New builds an Assistant from config. The credential store is initialized
// here, so legacy key migration happens once at startup.
func New(cfg *Config, logger *slog.Logger) *Assistant {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	store := gemini.NewCredentialStore(logger)
	store.Initialize()

	a := &Assistant{
		cfg:    cfg,
		gemini: gemini.NewService(cfg.Gemini, store, logger),
		logger: logger.With("component", "assistant"),
	}
	if cfg.RxNav.Enabled {
		a.rxnav = rxnav.NewClient(cfg.RxNav.BaseURL, logger)
	}
	return a
}

// NewWithServices builds an Assistant around pre-built clients. Embedders
// that manage their own credential store (and tests) use this instead of New.
func NewWithServices(cfg *Config, svc *gemini.Service, rx *rxnav.Client, logger *slog.Logger) *Assistant {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		cfg:    cfg,
		gemini: svc,
		rxnav:  rx,
		logger: logger.With("component", "assistant"),
	}
}

// Gemini exposes the underlying service for key management commands.
func (a *Assistant) Gemini() *gemini.Service { return a.gemini }

// Ready reports whether an API key is configured.
func (a *Assistant) Ready() bool { return a.gemini.Ready() }

// NewSession starts a chat session with the configured history window.
func (a *Assistant) NewSession() *gemini.ChatSession {
	return a.gemini.NewSession(gemini.SessionOptions{
		MaxHistory: a.cfg.Session.MaxHistory,
	})
}

// Chat sends one message on the session. When the request quota is
// exhausted the user gets the rate-limit notice instead of an error; the
// message is not committed to history, so it can be retried verbatim.
func (a *Assistant) Chat(ctx context.Context, session *gemini.ChatSession, text string) (string, error) {
	reply, err := session.SendMessage(ctx, text)
	if gemini.IsRateLimit(err) {
		a.logger.Warn("chat throttled, returning placeholder", "session_id", session.ID())
		return RateLimitNotice, nil
	}
	return reply, err
}

// Ask is the single-shot variant of Chat, with the same rate-limit policy.
func (a *Assistant) Ask(ctx context.Context, prompt string) (string, error) {
	reply, err := a.gemini.GenerateText(ctx, prompt, nil)
	if gemini.IsRateLimit(err) {
		a.logger.Warn("ask throttled, returning placeholder")
		return RateLimitNotice, nil
	}
	return reply, err
}

// SimplifyDocument rewrites a medical document at the requested reading
// level. When the API call fails for any reason the rule-based rewriter
// takes over at reduced confidence, so the user always gets a result.
func (a *Assistant) SimplifyDocument(ctx context.Context, text string, docType gemini.DocumentType, level gemini.SimplificationLevel, patient *gemini.PatientContext) (*SimplificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no document text to simplify")
	}
	if docType == "" {
		docType = gemini.DocGeneralMedical
	}
	if level == "" {
		level = gemini.LevelIntermediate
	}

	start := time.Now()
	simplified, err := a.gemini.SimplifyDocument(ctx, text, docType, level, patient)

	result := &SimplificationResult{
		OriginalText:    text,
		ConfidenceScore: apiConfidence,
		ReadingLevel:    level.ReadingLevel(),
		DocumentType:    docType,
		Level:           level,
	}

	if err != nil {
		a.logger.Warn("simplification via API failed, using rule-based fallback", "error", err)
		simplified = applySimplificationRules(text, level)
		result.ConfidenceScore = fallbackConfidence
		result.UsedFallback = true
	}

	result.SimplifiedText = simplified
	result.WordCountReduction = wordCountReduction(text, simplified)
	result.KeyTermsExplained = extractExplainedTerms(text, simplified)
	result.ProcessingTime = time.Since(start)
	return result, nil
}

// InteractionSummary combines the RxNav database lookup with the model's
// plain-language explanation.
type InteractionSummary struct {
	Matches     []*rxnav.MedicationMatch
	Report      *rxnav.InteractionReport
	Explanation string
}

// CheckInteractions validates the medication names against RxNav, looks up
// documented interactions between the resolved concepts, and asks the model
// for a plain-language explanation. RxNav being disabled or partially
// failing degrades the summary rather than failing it; the explanation
// follows the rate-limit placeholder policy.
func (a *Assistant) CheckInteractions(ctx context.Context, medications []string) (*InteractionSummary, error) {
	if len(medications) < 2 {
		return nil, fmt.Errorf("need at least two medications to check interactions")
	}

	summary := &InteractionSummary{}

	if a.rxnav != nil {
		var rxcuis []string
		for _, med := range medications {
			match, err := a.rxnav.ValidateMedication(ctx, med)
			if err != nil {
				a.logger.Warn("medication validation failed", "medication", med, "error", err)
				continue
			}
			summary.Matches = append(summary.Matches, match)
			if match.Valid {
				rxcuis = append(rxcuis, match.RxCUI)
			}
		}

		if len(rxcuis) >= 2 {
			report, err := a.rxnav.CheckInteractions(ctx, rxcuis)
			if err != nil {
				a.logger.Warn("interaction lookup failed", "error", err)
			} else {
				summary.Report = report
			}
		}
	}

	explanation, err := a.gemini.CheckDrugInteractions(ctx, medications)
	switch {
	case gemini.IsRateLimit(err):
		a.logger.Warn("interaction explanation throttled, returning placeholder")
		explanation = RateLimitNotice
	case err != nil:
		// The database half can stand on its own.
		a.logger.Warn("interaction explanation failed", "error", err)
		if summary.Report == nil && len(summary.Matches) == 0 {
			return nil, err
		}
		explanation = ""
	}
	summary.Explanation = explanation
	return summary, nil
}

// LabelScan is the result of reading a medication label photo.
type LabelScan struct {
	RawText string
	Data    *LabelData
}

// ScanLabel transcribes a medication label image and parses the structured
// fields out of the transcription. data is base64-encoded image bytes.
// Unlike the text helpers, scan failures propagate: there is no useful
// placeholder for a photo the model never saw.
func (a *Assistant) ScanLabel(ctx context.Context, data, mimeType string) (*LabelScan, error) {
	raw, err := a.gemini.AnalyzeImage(ctx, data, mimeType, "")
	if err != nil {
		return nil, err
	}
	return &LabelScan{
		RawText: raw,
		Data:    ParseLabelText(raw),
	}, nil
}
