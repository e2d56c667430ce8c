package handlers

import (
	"encoding/json"
	"net/http"
)

func (h *ThreatsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := threatID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid threat id"})
		return
	}
	items, err := h.svc.Messages(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ThreatsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := threatID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid threat id"})
		return
	}
	var payload struct {
		Sender  string `json:"sender"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	m, err := h.svc.PostMessage(r.Context(), id, payload.Sender, payload.Message)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
