package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"threatwatch/config"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. It is a
// boundary collaborator: every reply is validated before anything reaches the
// threat store, and any failure comes back as *Error.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	sampleLimit int
	httpClient  *http.Client
}

// NewClient returns nil when no API key is configured; call sites treat a nil
// client as "advisory unavailable" rather than an error at startup.
func NewClient(cfg config.AdvisoryConfig) *Client {
	if !cfg.Configured() {
		return nil
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	limit := cfg.SampleLimit
	if limit <= 0 {
		limit = 10
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     base,
		sampleLimit: limit,
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *Client) SampleLimit() int {
	if c == nil {
		return 0
	}
	return c.sampleLimit
}

// SuggestLevel maps a threat description to a 1-5 severity plus rationale.
func (c *Client) SuggestLevel(ctx context.Context, a Assessment) (*Suggestion, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	content, err := c.chat(ctx, suggestSystemPrompt, suggestUserPrompt(a))
	if err != nil {
		return nil, err
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, &Error{Reason: "malformed suggestion reply", Err: err}
	}
	if s.Level < 1 || s.Level > 5 {
		return nil, &Error{Reason: fmt.Sprintf("suggested level %d out of range", s.Level)}
	}
	s.Rationale = strings.TrimSpace(s.Rationale)
	if s.Rationale == "" {
		return nil, &Error{Reason: "suggestion reply missing rationale"}
	}
	return &s, nil
}

// SampleThreats asks for n synthetic example threats for seeding.
func (c *Client) SampleThreats(ctx context.Context, n int) ([]SampleThreat, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if n <= 0 {
		n = 5
	}
	if n > c.sampleLimit {
		n = c.sampleLimit
	}
	content, err := c.chat(ctx, sampleSystemPrompt, sampleUserPrompt(n))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Threats []SampleThreat `json:"threats"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, &Error{Reason: "malformed samples reply", Err: err}
	}
	if len(payload.Threats) == 0 {
		return nil, &Error{Reason: "samples reply contained no threats"}
	}
	if len(payload.Threats) > n {
		payload.Threats = payload.Threats[:n]
	}
	return payload.Threats, nil
}

// Summarize produces the narrative posture report over the current store.
func (c *Client) Summarize(ctx context.Context, digests []ThreatDigest) (*Summary, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	content, err := c.chat(ctx, summarySystemPrompt, summaryUserPrompt(digests))
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, &Error{Reason: "malformed summary reply", Err: err}
	}
	s.Analysis = strings.TrimSpace(s.Analysis)
	if s.Analysis == "" {
		return nil, &Error{Reason: "summary reply missing analysis"}
	}
	if s.Patterns == nil {
		s.Patterns = []string{}
	}
	if s.Anomalies == nil {
		s.Anomalies = []string{}
	}
	if s.Recommendations == nil {
		s.Recommendations = []string{}
	}
	return &s, nil
}

// chat performs one JSON-mode completion round trip.
func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:      1200,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Reason: "marshal request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", &Error{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Reason: "service unreachable", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Error{Reason: "read reply", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		var apiResp chatResponse
		if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error != nil {
			return "", &Error{Reason: "service error: " + apiResp.Error.Message}
		}
		return "", &Error{Reason: fmt.Sprintf("service returned status %d", resp.StatusCode)}
	}
	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &Error{Reason: "malformed reply envelope", Err: err}
	}
	if len(apiResp.Choices) == 0 {
		return "", &Error{Reason: "reply contained no choices"}
	}
	return apiResp.Choices[0].Message.Content, nil
}
