// errors.go classifies API failures into a closed taxonomy so callers can
// make policy decisions (rate-limit fallback, credential prompts) without
// string-matching error text themselves.
package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrorKind classifies an API error. The set is closed: every failure that
// reaches a caller is one of these.
type ErrorKind int

const (
	// KindGeneric covers unexpected HTTP statuses and transport-level
	// failures where no HTTP response was received at all.
	KindGeneric ErrorKind = iota
	// KindRateLimit is HTTP 429 — the per-minute quota was exceeded.
	KindRateLimit
	// KindContentFiltered is HTTP 400 with a safety block in the message.
	KindContentFiltered
	// KindBadRequest is any other HTTP 400.
	KindBadRequest
	// KindInvalidCredential is HTTP 401 — the API key is wrong or revoked.
	KindInvalidCredential
	// KindForbidden is HTTP 403.
	KindForbidden
)

// String returns a machine-friendly label for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindContentFiltered:
		return "content_filtered"
	case KindBadRequest:
		return "bad_request"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindForbidden:
		return "forbidden"
	default:
		return "generic"
	}
}

// APIError is a classified API failure. Only Classify produces these;
// callers never construct them ad hoc.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // 0 when no HTTP response was received
	Code       string // machine-readable status from the error body, e.g. "RESOURCE_EXHAUSTED"
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gemini: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("gemini: %s (HTTP %d): %s", e.Kind, e.StatusCode, truncate(e.Message, 200))
}

// IsRateLimit reports whether err is a classified rate-limit error.
func IsRateLimit(err error) bool {
	apierr, ok := AsAPIError(err)
	return ok && apierr.Kind == KindRateLimit
}

// AsAPIError unwraps err to an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apierr *APIError
	if errors.As(err, &apierr) {
		return apierr, true
	}
	return nil, false
}

// Classify maps an HTTP status and raw response body to an APIError.
// First match wins:
//
//	429            → rate_limit
//	400 + "SAFETY" → content_filtered
//	400            → bad_request
//	401            → invalid_credential
//	403            → forbidden
//	anything else  → generic (with status)
func Classify(statusCode int, body []byte) *APIError {
	message, code := parseErrorBody(body)

	kind := KindGeneric
	switch {
	case statusCode == 429:
		kind = KindRateLimit
	case statusCode == 400 && strings.Contains(message, "SAFETY"):
		kind = KindContentFiltered
	case statusCode == 400:
		kind = KindBadRequest
	case statusCode == 401:
		kind = KindInvalidCredential
	case statusCode == 403:
		kind = KindForbidden
	}

	return &APIError{
		Kind:       kind,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// ClassifyTransport wraps a network-level failure (no HTTP response) as a
// generic APIError with no status.
func ClassifyTransport(err error) *APIError {
	return &APIError{Kind: KindGeneric, Message: err.Error()}
}

// parseErrorBody extracts the message and status code from the Gemini error
// envelope. Falls back to the raw body when it is not the expected JSON.
func parseErrorBody(body []byte) (message, code string) {
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message, envelope.Error.Status
	}
	return strings.TrimSpace(string(body)), ""
}

// ValidationError reports a response that failed the shape check and could
// not be recovered by lenient extraction.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "gemini: invalid response: " + e.Reason
}

// truncate limits s to about max bytes for log and error output, backing
// up so a multibyte rune is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
