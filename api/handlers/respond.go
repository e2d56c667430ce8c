package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"threatwatch/core/advisory"
	"threatwatch/core/threats"
	"threatwatch/core/utils"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// respondError translates the domain error taxonomy to HTTP. Advisory
// failures get a distinct message so a client can tell "AI failed" apart
// from "save failed".
func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	var verr *threats.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Details: verr.Fields})
		return
	}
	if errors.Is(err, threats.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "threat not found"})
		return
	}
	var aerr *advisory.Error
	if errors.As(err, &aerr) {
		logger.Errorf("advisory call failed: %v", aerr)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "advisory failed", Details: aerr.Reason})
		return
	}
	logger.Errorf("request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "server error"})
}
