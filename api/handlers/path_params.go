package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func threatID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		// Fallback for direct handler tests without chi route context.
		segments := strings.Split(strings.Trim(strings.TrimSpace(r.URL.Path), "/"), "/")
		for i := 0; i < len(segments)-1; i++ {
			if segments[i] == "threats" && strings.TrimSpace(segments[i+1]) != "" {
				raw = segments[i+1]
				break
			}
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
