package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func configuredStore(t *testing.T, key string) *CredentialStore {
	t.Helper()
	store, _, _ := newTestStore()
	if err := store.SetKey(key); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestClientRefusesWhenUnconfigured(t *testing.T) {
	store, _, _ := newTestStore()
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient(server.URL, store, nil)
	_, err := client.Send(context.Background(), "models/gemini-1.5-flash:generateContent", generateRequest{})

	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Send() error = %v, want ErrNotConfigured", err)
	}
	if requests != 0 {
		t.Errorf("server saw %d requests, want 0 (no network call when unconfigured)", requests)
	}
}

func TestClientSendSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, configuredStore(t, "test-key"), nil)
	resp, err := client.Send(context.Background(), "models/gemini-1.5-flash:generateContent", generateRequest{
		Contents: []Content{TextContent(RoleUser, "hello")},
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key query param = %q, want the stored credential", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "hello" {
		t.Errorf("request body contents = %+v", gotBody.Contents)
	}
	if resp.Text() != "Take one tablet daily." {
		t.Errorf("Text() = %q", resp.Text())
	}
}

func TestClientClassifiesHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
	}{
		{"429", http.StatusTooManyRequests, `{"error":{"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, KindRateLimit},
		{"400 safety", http.StatusBadRequest, `{"error":{"message":"blocked: SAFETY"}}`, KindContentFiltered},
		{"400 other", http.StatusBadRequest, `{"error":{"message":"bad field"}}`, KindBadRequest},
		{"401", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, KindInvalidCredential},
		{"403", http.StatusForbidden, `{"error":{"message":"denied"}}`, KindForbidden},
		{"503", http.StatusServiceUnavailable, `overloaded`, KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, configuredStore(t, "k"), nil)
			_, err := client.Send(context.Background(), "models/m:generateContent", generateRequest{})

			apierr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("Send() error = %v, want *APIError", err)
			}
			if apierr.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", apierr.Kind, tt.kind)
			}
			if apierr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apierr.StatusCode, tt.status)
			}
		})
	}
}

func TestClientNetworkFailureIsGeneric(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, configuredStore(t, "k"), nil)
	_, err := client.Send(context.Background(), "models/m:generateContent", generateRequest{})

	apierr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("Send() error = %v, want *APIError", err)
	}
	if apierr.Kind != KindGeneric || apierr.StatusCode != 0 {
		t.Errorf("got kind=%s status=%d, want generic with no status", apierr.Kind, apierr.StatusCode)
	}
}

func TestClientNetworkFailureNeverExposesKey(t *testing.T) {
	const key = "AIza-very-secret-key"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	client := NewClient(server.URL, configuredStore(t, key), logger)
	_, err := client.Send(context.Background(), "models/m:generateContent", generateRequest{})
	if err == nil {
		t.Fatal("Send() error = nil, want transport failure")
	}

	// The transport error embeds the request URL, which carried ?key=.
	if strings.Contains(err.Error(), key) {
		t.Errorf("error text contains the credential: %q", err.Error())
	}
	if strings.Contains(logs.String(), key) {
		t.Errorf("log output contains the credential: %q", logs.String())
	}
	if !strings.Contains(err.Error(), "REDACTED") {
		t.Errorf("error text = %q, want the redaction marker in place of the key", err.Error())
	}
}

func TestRedactKey(t *testing.T) {
	err := errors.New(`Post "http://host/models/m:generateContent?key=s3cret%2Fkey": connection refused`)

	got := redactKey(err, "s3cret/key").Error()
	if strings.Contains(got, "s3cret") {
		t.Errorf("redactKey() = %q, credential still present", got)
	}
	if !strings.Contains(got, "?key=REDACTED") {
		t.Errorf("redactKey() = %q, want the escaped form replaced", got)
	}

	if redactKey(nil, "k") != nil {
		t.Error("redactKey(nil) != nil")
	}
	if got := redactKey(err, "").Error(); got != err.Error() {
		t.Errorf("redactKey with empty key = %q, want unchanged", got)
	}
}

func TestClientLenientExtraction(t *testing.T) {
	// Second candidate is malformed, so strict validation fails, but the
	// first candidate's text is reachable by direct access.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[
			{"content":{"parts":[{"text":"still usable"}],"role":"model"}},
			{"content":{"parts":[]}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, configuredStore(t, "k"), nil)
	resp, err := client.Send(context.Background(), "models/m:generateContent", generateRequest{})
	if err != nil {
		t.Fatalf("Send() error = %v, want lenient recovery", err)
	}
	if resp.Text() != "still usable" {
		t.Errorf("Text() = %q, want recovered text", resp.Text())
	}
}

func TestClientValidationErrorWhenUnrecoverable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"OTHER"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, configuredStore(t, "k"), nil)
	_, err := client.Send(context.Background(), "models/m:generateContent", generateRequest{})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Send() error = %v, want *ValidationError", err)
	}
}
