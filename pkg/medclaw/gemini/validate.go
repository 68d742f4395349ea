// validate.go checks that a raw API reply has the shape the rest of the code
// relies on before any text is extracted. The strict check is the normal
// path; the lenient extractor is a compatibility shim for responses that
// vary slightly across API versions and is always logged when it fires.
package gemini

import (
	"encoding/json"
	"fmt"
)

// Validate parses and strictly validates a raw generateContent reply.
// Required shape: at least one candidate, and every candidate has
// content.parts[0].text as a non-empty string. Optional fields (safety
// ratings, usage metadata, index, model version) are accepted but never
// required. Failures return a *ValidationError.
func Validate(raw []byte) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("parsing response: %v", err)}
	}

	if len(resp.Candidates) == 0 {
		return nil, &ValidationError{Reason: "no candidates"}
	}
	for i, cand := range resp.Candidates {
		if len(cand.Content.Parts) == 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("candidate %d has no parts", i)}
		}
		if cand.Content.Parts[0].Text == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("candidate %d has empty text", i)}
		}
	}

	return &resp, nil
}

// ExtractTextLenient is the fallback for replies that fail strict
// validation: it walks the raw JSON directly and returns
// candidates[0].content.parts[0].text if that path is reachable and
// non-empty. Returns false when even direct access finds nothing.
func ExtractTextLenient(raw []byte) (string, bool) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false
	}

	candidates, ok := doc["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return "", false
	}
	first, ok := candidates[0].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := first["content"].(map[string]any)
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", false
	}
	part, ok := parts[0].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := part["text"].(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}
