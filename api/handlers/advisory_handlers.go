package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"threatwatch/core/advisory"
	"threatwatch/core/store"
	"threatwatch/core/threats"
	"threatwatch/core/utils"
)

type AdvisoryHandler struct {
	advisor *advisory.Client
	svc     *threats.Service
	logger  *utils.Logger
}

func NewAdvisoryHandler(advisor *advisory.Client, svc *threats.Service, logger *utils.Logger) *AdvisoryHandler {
	return &AdvisoryHandler{advisor: advisor, svc: svc, logger: logger}
}

// AnalyzeLevel rates a draft threat. The legacy client parses the combined
// analysis string by splitting on the first space, so the level always comes
// first; the structured fields ride along for newer clients.
func (h *AdvisoryHandler) AnalyzeLevel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Status      string   `json:"status"`
		Categories  []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(payload.Description) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Details: map[string]string{"description": "required"}})
		return
	}
	suggestion, err := h.advisor.SuggestLevel(r.Context(), advisory.Assessment{
		Name:        payload.Name,
		Description: payload.Description,
		Status:      payload.Status,
		Categories:  payload.Categories,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis":  fmt.Sprintf("%d %s", suggestion.Level, suggestion.Rationale),
		"level":     suggestion.Level,
		"rationale": suggestion.Rationale,
	})
}

// Narrative summarizes the whole store into a posture report.
func (h *AdvisoryHandler) Narrative(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), "")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	digests := make([]advisory.ThreatDigest, 0, len(items))
	for _, t := range items {
		digests = append(digests, advisory.ThreatDigest{
			Name:       t.Name,
			Status:     t.Status,
			Level:      t.Level,
			Categories: t.Categories,
			CreatedAt:  t.CreatedAt,
		})
	}
	summary, err := h.advisor.Summarize(r.Context(), digests)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GenerateSamples seeds the store with synthetic threats. Each record goes
// through the normal create path so validation and activity logging apply.
func (h *AdvisoryHandler) GenerateSamples(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Count    int    `json:"count"`
		Username string `json:"username"`
	}
	// An empty body means "use the defaults".
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	samples, err := h.advisor.SampleThreats(r.Context(), payload.Count)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" {
		username = "ai-seed"
	}
	created := make([]store.Threat, 0, len(samples))
	for _, sample := range samples {
		t, err := h.svc.Create(r.Context(), threats.Input{
			Username:    username,
			Name:        sample.Name,
			Description: sample.Description,
			Status:      sample.Status,
			Categories:  sample.Categories,
			Level:       sample.Level,
		})
		if err != nil {
			h.logger.Errorf("skipping invalid sample threat %q: %v", sample.Name, err)
			continue
		}
		created = append(created, *t)
	}
	if len(created) == 0 {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "advisory failed", Details: "no usable sample threats returned"})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
