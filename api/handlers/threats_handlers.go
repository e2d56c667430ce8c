package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"threatwatch/core/threats"
	"threatwatch/core/utils"
)

type ThreatsHandler struct {
	svc    *threats.Service
	logger *utils.Logger
}

func NewThreatsHandler(svc *threats.Service, logger *utils.Logger) *ThreatsHandler {
	return &ThreatsHandler{svc: svc, logger: logger}
}

// flexInt tolerates a quoted number: the SPA's edit form round-trips the
// level through a <select> and submits it as a string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type threatPayload struct {
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Categories  []string `json:"categories"`
	// The create form submits threatLevel, the edit form submits level.
	ThreatLevel flexInt `json:"threatLevel"`
	Level       flexInt `json:"level"`
	Resolution  *string `json:"resolution"`
}

func (p *threatPayload) toInput() threats.Input {
	level := int(p.ThreatLevel)
	if level == 0 {
		level = int(p.Level)
	}
	return threats.Input{
		Username:    p.Username,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Categories:  p.Categories,
		Level:       level,
		Resolution:  p.Resolution,
	}
}

func (h *ThreatsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload threatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	created, err := h.svc.Create(r.Context(), payload.toInput())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ThreatsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	items, err := h.svc.List(r.Context(), status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ThreatsHandler) Unresolved(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Unresolved(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ThreatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := threatID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid threat id"})
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *ThreatsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := threatID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid threat id"})
		return
	}
	var payload threatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	updated, err := h.svc.Update(r.Context(), id, payload.toInput())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ThreatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
