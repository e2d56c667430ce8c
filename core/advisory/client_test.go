package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"threatwatch/config"
)

// fakeCompletions returns a chat-completions server that always replies with
// the given message content.
func fakeCompletions(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %+v", req.ResponseFormat)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(config.AdvisoryConfig{
		APIKey:      "test-key",
		Model:       "test-model",
		BaseURL:     baseURL,
		TimeoutSec:  5,
		SampleLimit: 3,
	})
	if c == nil {
		t.Fatalf("expected configured client")
	}
	return c
}

func TestNewClientUnconfigured(t *testing.T) {
	if c := NewClient(config.AdvisoryConfig{}); c != nil {
		t.Fatalf("expected nil client without API key")
	}
	var nilClient *Client
	_, err := nilClient.SuggestLevel(context.Background(), Assessment{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSuggestLevel(t *testing.T) {
	srv := fakeCompletions(t, `{"level":4,"rationale":"credential theft with wide blast radius"}`)
	c := testClient(t, srv.URL)
	s, err := c.SuggestLevel(context.Background(), Assessment{Name: "Phishing", Description: "credential harvesting"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Level != 4 || s.Rationale != "credential theft with wide blast radius" {
		t.Fatalf("unexpected suggestion %+v", s)
	}
}

func TestSuggestLevelRejectsOutOfRange(t *testing.T) {
	srv := fakeCompletions(t, `{"level":9,"rationale":"nope"}`)
	c := testClient(t, srv.URL)
	_, err := c.SuggestLevel(context.Background(), Assessment{Description: "d"})
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected advisory error, got %v", err)
	}
}

func TestSuggestLevelRejectsMissingRationale(t *testing.T) {
	srv := fakeCompletions(t, `{"level":3,"rationale":"  "}`)
	c := testClient(t, srv.URL)
	_, err := c.SuggestLevel(context.Background(), Assessment{Description: "d"})
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected advisory error, got %v", err)
	}
}

func TestSampleThreatsClampedToLimit(t *testing.T) {
	srv := fakeCompletions(t, `{"threats":[
		{"name":"a","description":"d","status":"Potential","categories":["Environment"],"level":1},
		{"name":"b","description":"d","status":"Active","categories":["IT Services"],"level":2},
		{"name":"c","description":"d","status":"Potential","categories":["Environment"],"level":3},
		{"name":"e","description":"d","status":"Active","categories":["Environment"],"level":4}
	]}`)
	c := testClient(t, srv.URL)
	// The configured sample limit is 3; a request for 10 is clamped.
	samples, err := c.SampleThreats(context.Background(), 10)
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples after clamping, got %d", len(samples))
	}
}

func TestSummarizeFillsEmptySlices(t *testing.T) {
	srv := fakeCompletions(t, `{"analysis":"mostly phishing activity"}`)
	c := testClient(t, srv.URL)
	s, err := c.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Analysis != "mostly phishing activity" {
		t.Fatalf("unexpected analysis %q", s.Analysis)
	}
	if s.Patterns == nil || s.Anomalies == nil || s.Recommendations == nil {
		t.Fatalf("expected empty non-nil slices, got %+v", s)
	}
}

func TestChatSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	t.Cleanup(srv.Close)
	c := testClient(t, srv.URL)
	_, err := c.SuggestLevel(context.Background(), Assessment{Description: "d"})
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected advisory error, got %v", err)
	}
	if aerr.Reason != "service error: rate limited" {
		t.Fatalf("unexpected reason %q", aerr.Reason)
	}
}

func TestChatRejectsMalformedReply(t *testing.T) {
	srv := fakeCompletions(t, `not json at all`)
	c := testClient(t, srv.URL)
	_, err := c.SuggestLevel(context.Background(), Assessment{Description: "d"})
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected advisory error, got %v", err)
	}
}
