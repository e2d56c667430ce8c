package advisory

import "time"

// Assessment is the free-text material the advisor rates.
type Assessment struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Categories  []string `json:"categories"`
}

// Suggestion is a non-authoritative severity rating; the persisted level is
// always the human-confirmed one.
type Suggestion struct {
	Level     int    `json:"level"`
	Rationale string `json:"rationale"`
}

// SampleThreat is a synthetic record used for seeding and demos.
type SampleThreat struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Categories  []string `json:"categories"`
	Level       int      `json:"level"`
}

// ThreatDigest is the slice of a stored threat the narrative summary sees.
type ThreatDigest struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Level      int       `json:"level"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary is the narrative security-posture report over the whole store.
type Summary struct {
	Analysis        string   `json:"analysis"`
	Patterns        []string `json:"patterns"`
	Anomalies       []string `json:"anomalies"`
	Recommendations []string `json:"recommendations"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
