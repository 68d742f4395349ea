package rxnav

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, nil)
}

func TestValidateMedicationFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/rxcui.json"):
			if got := r.URL.Query().Get("name"); got != "lisinopril" {
				t.Errorf("name param = %q", got)
			}
			_, _ = w.Write([]byte(`{"idGroup":{"rxnormId":["29046","104375","197884"]}}`))
		case strings.HasPrefix(r.URL.Path, "/rxcui/29046/properties.json"):
			_, _ = w.Write([]byte(`{"properties":{"name":"lisinopril","synonym":"Prinivil","tty":"IN"}}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	match, err := client.ValidateMedication(context.Background(), "lisinopril")
	if err != nil {
		t.Fatalf("ValidateMedication() error = %v", err)
	}
	if !match.Valid {
		t.Fatal("Valid = false, want true")
	}
	if match.RxCUI != "29046" {
		t.Errorf("RxCUI = %q, want first id", match.RxCUI)
	}
	if match.Name != "lisinopril" || match.Synonym != "Prinivil" || match.TermType != "IN" {
		t.Errorf("properties = %+v", match)
	}
	if len(match.Alternatives) != 2 {
		t.Errorf("Alternatives = %v, want the remaining ids", match.Alternatives)
	}
}

func TestValidateMedicationNotFoundGetsSuggestions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/rxcui.json"):
			_, _ = w.Write([]byte(`{"idGroup":{}}`))
		case strings.HasPrefix(r.URL.Path, "/approximateTerm.json"):
			_, _ = w.Write([]byte(`{"approximateGroup":{"candidate":[
				{"name":"lisinopril"},{"name":"lisinopril"},{"name":"fosinopril"},{"name":""}
			]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	match, err := client.ValidateMedication(context.Background(), "lisinipril")
	if err != nil {
		t.Fatalf("ValidateMedication() error = %v", err)
	}
	if match.Valid {
		t.Error("Valid = true for unknown name")
	}
	// Duplicates and empty names are dropped.
	want := []string{"lisinopril", "fosinopril"}
	if len(match.Suggestions) != len(want) {
		t.Fatalf("Suggestions = %v, want %v", match.Suggestions, want)
	}
	for i := range want {
		if match.Suggestions[i] != want[i] {
			t.Errorf("Suggestions[%d] = %q, want %q", i, match.Suggestions[i], want[i])
		}
	}
}

func TestValidateMedicationPropertiesFailureIsNonFatal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/rxcui.json") {
			_, _ = w.Write([]byte(`{"idGroup":{"rxnormId":["6809"]}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	match, err := client.ValidateMedication(context.Background(), "metformin")
	if err != nil {
		t.Fatalf("ValidateMedication() error = %v", err)
	}
	if !match.Valid || match.RxCUI != "6809" {
		t.Errorf("match = %+v, want valid with RxCUI despite missing properties", match)
	}
}

func TestCheckInteractions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/interaction/list.json") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("rxcuis"); got != "11289+1191" {
			t.Errorf("rxcuis param = %q", got)
		}
		_, _ = w.Write([]byte(`{"fullInteractionTypeGroup":[{"fullInteractionType":[{"interactionPair":[
			{
				"interactionConcept":[
					{"minConceptItem":{"name":"warfarin"}},
					{"minConceptItem":{"name":"aspirin"}}
				],
				"severity":"high",
				"description":"Increased risk of bleeding."
			},
			{
				"interactionConcept":[{"minConceptItem":{"name":"orphan"}}],
				"severity":"N/A",
				"description":"malformed pair, skipped"
			}
		]}]}]}`))
	})

	report, err := client.CheckInteractions(context.Background(), []string{"11289", "1191"})
	if err != nil {
		t.Fatalf("CheckInteractions() error = %v", err)
	}
	if report.CheckedMedications != 2 {
		t.Errorf("CheckedMedications = %d", report.CheckedMedications)
	}
	if len(report.Interactions) != 1 {
		t.Fatalf("Interactions = %+v, want the one complete pair", report.Interactions)
	}
	got := report.Interactions[0]
	if got.Drug1 != "warfarin" || got.Drug2 != "aspirin" || got.Severity != "high" {
		t.Errorf("Interaction = %+v", got)
	}
	if report.SeveritySummary["high"] != 1 {
		t.Errorf("SeveritySummary = %v", report.SeveritySummary)
	}
}

func TestCheckInteractionsNeedsTwoMedications(t *testing.T) {
	client := NewClient("http://unused.invalid", nil)
	if _, err := client.CheckInteractions(context.Background(), []string{"6809"}); err == nil {
		t.Error("CheckInteractions() with one RxCUI error = nil, want error")
	}
}

func TestCheckInteractionsEmptySeverityBecomesUnknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fullInteractionTypeGroup":[{"fullInteractionType":[{"interactionPair":[
			{
				"interactionConcept":[
					{"minConceptItem":{"name":"a"}},
					{"minConceptItem":{"name":"b"}}
				],
				"description":"d"
			}
		]}]}]}`))
	})

	report, err := client.CheckInteractions(context.Background(), []string{"1", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if report.Interactions[0].Severity != "Unknown" {
		t.Errorf("Severity = %q, want Unknown", report.Interactions[0].Severity)
	}
}

func TestGetJSONServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.ValidateMedication(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("ValidateMedication() error = %v, want 502 mention", err)
	}
}
