package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prospect-dedup/internal/store"
)

// BatchesHandler serves batch history from the store
type BatchesHandler struct {
	Store *store.Store
}

// ListBatches handles GET /api/batches?limit=N
func (h *BatchesHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		http.Error(w, "persistence not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	batches, err := h.Store.ListBatches(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list batches: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batches)
}
