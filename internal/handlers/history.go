package handlers

import (
	"net/http"
	"strconv"

	"clip-relay/internal/history"
	"clip-relay/internal/logging"
)

// GetHistory returns the most recent pipeline runs as JSON.
// Query parameter "limit" caps the count (default 50, max 500).
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSONError(w, "request history is not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		logging.Error("failed to fetch request history: %v", err)
		writeJSONError(w, "failed to fetch history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries)
}
