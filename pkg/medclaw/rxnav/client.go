// Package rxnav is a client for the National Library of Medicine's RxNav
// REST API: medication name validation against RxNorm and pairwise drug
// interaction lookup. RxNav is free and unauthenticated; this client adds
// timeouts, logging and typed results on top of the raw JSON.
package rxnav

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultBaseURL is the public RxNav endpoint.
const DefaultBaseURL = "https://rxnav.nlm.nih.gov/REST"

// maxSuggestions caps spelling suggestions for unknown medication names.
const maxSuggestions = 5

// Client talks to the RxNav REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client. An empty baseURL selects the public endpoint.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "rxnav"),
	}
}

// MedicationMatch is the result of validating a medication name.
type MedicationMatch struct {
	// Valid reports whether the name resolved to an RxNorm concept.
	Valid bool

	// RxCUI is the RxNorm concept identifier when Valid.
	RxCUI string

	// Name, Synonym and TermType come from the concept's properties.
	Name     string
	Synonym  string
	TermType string

	// Alternatives are further RxCUIs matching the name.
	Alternatives []string

	// Suggestions are close spellings when the name did not resolve.
	Suggestions []string
}

// ValidateMedication resolves a medication name to an RxNorm concept.
// Unknown names are not an error: the match comes back with Valid=false and
// spelling suggestions.
func (c *Client) ValidateMedication(ctx context.Context, name string) (*MedicationMatch, error) {
	var body struct {
		IDGroup struct {
			RxNormID []string `json:"rxnormId"`
		} `json:"idGroup"`
	}
	if err := c.getJSON(ctx, "/rxcui.json", url.Values{"name": {name}}, &body); err != nil {
		return nil, fmt.Errorf("validating %q: %w", name, err)
	}

	ids := body.IDGroup.RxNormID
	if len(ids) == 0 {
		suggestions, err := c.suggestions(ctx, name)
		if err != nil {
			// Suggestions are best-effort; the validation result stands.
			c.logger.Warn("fetching suggestions failed", "name", name, "error", err)
		}
		c.logger.Debug("medication not found", "name", name, "suggestions", len(suggestions))
		return &MedicationMatch{Valid: false, Suggestions: suggestions}, nil
	}

	match := &MedicationMatch{Valid: true, RxCUI: ids[0]}
	if len(ids) > 1 {
		end := len(ids)
		if end > maxSuggestions {
			end = maxSuggestions
		}
		match.Alternatives = ids[1:end]
	}

	if props, err := c.properties(ctx, match.RxCUI); err != nil {
		c.logger.Warn("fetching concept properties failed", "rxcui", match.RxCUI, "error", err)
	} else {
		match.Name = props.Name
		match.Synonym = props.Synonym
		match.TermType = props.TTY
	}

	c.logger.Debug("medication validated", "name", name, "rxcui", match.RxCUI)
	return match, nil
}

type conceptProperties struct {
	Name    string `json:"name"`
	Synonym string `json:"synonym"`
	TTY     string `json:"tty"`
}

func (c *Client) properties(ctx context.Context, rxcui string) (*conceptProperties, error) {
	var body struct {
		Properties conceptProperties `json:"properties"`
	}
	if err := c.getJSON(ctx, "/rxcui/"+url.PathEscape(rxcui)+"/properties.json", nil, &body); err != nil {
		return nil, err
	}
	return &body.Properties, nil
}

func (c *Client) suggestions(ctx context.Context, term string) ([]string, error) {
	var body struct {
		ApproximateGroup struct {
			Candidate []struct {
				Name string `json:"name"`
			} `json:"candidate"`
		} `json:"approximateGroup"`
	}
	query := url.Values{"term": {term}, "maxEntries": {fmt.Sprint(maxSuggestions)}}
	if err := c.getJSON(ctx, "/approximateTerm.json", query, &body); err != nil {
		return nil, err
	}

	var names []string
	for _, cand := range body.ApproximateGroup.Candidate {
		if cand.Name != "" && !contains(names, cand.Name) {
			names = append(names, cand.Name)
		}
		if len(names) == maxSuggestions {
			break
		}
	}
	return names, nil
}

// Interaction is one reported drug-drug interaction.
type Interaction struct {
	Drug1       string
	Drug2       string
	Severity    string
	Description string
}

// InteractionReport summarizes an interaction check across medications.
type InteractionReport struct {
	CheckedMedications int
	Interactions       []Interaction

	// SeveritySummary counts interactions per severity label.
	SeveritySummary map[string]int
}

// CheckInteractions looks up pairwise interactions between the given RxNorm
// concepts. At least two RxCUIs are required.
func (c *Client) CheckInteractions(ctx context.Context, rxcuis []string) (*InteractionReport, error) {
	if len(rxcuis) < 2 {
		return nil, fmt.Errorf("rxnav: need at least 2 medications to check interactions, got %d", len(rxcuis))
	}

	var body struct {
		FullInteractionTypeGroup []struct {
			FullInteractionType []struct {
				InteractionPair []struct {
					InteractionConcept []struct {
						MinConceptItem struct {
							Name string `json:"name"`
						} `json:"minConceptItem"`
					} `json:"interactionConcept"`
					Severity    string `json:"severity"`
					Description string `json:"description"`
				} `json:"interactionPair"`
			} `json:"fullInteractionType"`
		} `json:"fullInteractionTypeGroup"`
	}
	query := url.Values{"rxcuis": {strings.Join(rxcuis, "+")}}
	if err := c.getJSON(ctx, "/interaction/list.json", query, &body); err != nil {
		return nil, fmt.Errorf("checking interactions: %w", err)
	}

	report := &InteractionReport{
		CheckedMedications: len(rxcuis),
		SeveritySummary:    map[string]int{},
	}
	for _, group := range body.FullInteractionTypeGroup {
		for _, itype := range group.FullInteractionType {
			for _, pair := range itype.InteractionPair {
				if len(pair.InteractionConcept) < 2 {
					continue
				}
				severity := pair.Severity
				if severity == "" {
					severity = "Unknown"
				}
				report.Interactions = append(report.Interactions, Interaction{
					Drug1:       pair.InteractionConcept[0].MinConceptItem.Name,
					Drug2:       pair.InteractionConcept[1].MinConceptItem.Name,
					Severity:    severity,
					Description: pair.Description,
				})
				report.SeveritySummary[strings.ToLower(severity)]++
			}
		}
	}

	c.logger.Debug("interaction check done",
		"medications", len(rxcuis),
		"interactions", len(report.Interactions),
	)
	return report, nil
}

// getJSON issues a GET and decodes the JSON reply into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rxnav returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
