// client.go issues the one physical request type the API exposes:
// POST {base}/{model}:generateContent?key={credential}. Auth, validation and
// error classification live here; pacing is the Scheduler's job.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Gemini REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client sends generateContent requests. It refuses to touch the network
// when the credential store is unconfigured, and it never logs the key or
// full message text.
type Client struct {
	baseURL    string
	store      *CredentialStore
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a transport client over the given credential store.
// An empty baseURL selects the production endpoint.
func NewClient(baseURL string, store *CredentialStore, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: trimRightSlash(baseURL),
		store:   store,
		httpClient: &http.Client{
			// Generation on large documents can take a while; anything past
			// a minute is treated as a transport failure.
			Timeout: 60 * time.Second,
		},
		logger: logger.With("component", "gemini"),
	}
}

// Send issues a POST to {base}/{endpointSuffix}?key={credential} with the
// JSON-encoded body and returns the validated response. endpointSuffix is
// typically "models/<model>:generateContent".
func (c *Client) Send(ctx context.Context, endpointSuffix string, body any) (*GenerateResponse, error) {
	key, err := c.store.Key()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.baseURL + "/" + endpointSuffix + "?key=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending generate request",
		"method", http.MethodPost,
		"endpoint", endpointSuffix,
		"body_bytes", len(payload),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full request URL, key and all. Scrub it
		// before the error reaches a log line or a caller.
		err = redactKey(err, key)
		c.logger.Error("API request failed", "endpoint", endpointSuffix, "error", err)
		return nil, ClassifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyTransport(redactKey(fmt.Errorf("reading response: %w", err), key))
	}
	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apierr := Classify(resp.StatusCode, respBody)
		c.logger.Error("API error",
			"endpoint", endpointSuffix,
			"status", resp.StatusCode,
			"kind", apierr.Kind.String(),
			"code", apierr.Code,
			"duration_ms", duration.Milliseconds(),
		)
		return nil, apierr
	}

	validated, err := Validate(respBody)
	if err != nil {
		// Compatibility shim: the response shape varies slightly across API
		// versions. One lenient attempt via direct access, always logged.
		if text, ok := ExtractTextLenient(respBody); ok {
			c.logger.Warn("response failed strict validation, using lenient extraction",
				"endpoint", endpointSuffix,
				"reason", err.Error(),
			)
			validated = &GenerateResponse{
				Candidates: []Candidate{{Content: TextContent(RoleModel, text)}},
			}
		} else {
			c.logger.Error("response failed validation",
				"endpoint", endpointSuffix,
				"reason", err.Error(),
			)
			return nil, err
		}
	}

	c.logger.Info("generate request done",
		"endpoint", endpointSuffix,
		"status", resp.StatusCode,
		"candidates", len(validated.Candidates),
		"has_usage", validated.UsageMetadata != nil,
		"duration_ms", duration.Milliseconds(),
	)

	return validated, nil
}

// redactKey removes every occurrence of the credential (raw and
// URL-escaped) from an error's text.
func redactKey(err error, key string) error {
	if err == nil || key == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
	msg = strings.ReplaceAll(msg, key, "REDACTED")
	return errors.New(msg)
}

func trimRightSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
