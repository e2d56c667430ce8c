package handlers

import "net/http"

func (h *ThreatsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := threatID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid threat id"})
		return
	}
	items, err := h.svc.Logs(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
