// internal/handler/duplicate_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wasender/wablast-backend/internal/repository"
)

// DuplicateHandler serves the duplicate-record admin surface: listing who
// has already been messaged and clearing a number so it can be messaged
// again.
type DuplicateHandler struct {
	Store   repository.DuplicateStore
	OwnerID string
	Log     zerolog.Logger
}

// ListDuplicates returns every duplicate record for the configured owner.
func (h *DuplicateHandler) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListByOwner(r.Context(), h.OwnerID)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list duplicate records")
		http.Error(w, "failed to list duplicate records: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data":  records,
		"count": len(records),
	})
}

// DeleteDuplicate removes one record, re-admitting the number for future
// blasts.
func (h *DuplicateHandler) DeleteDuplicate(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if phone == "" {
		http.Error(w, "phone is required", http.StatusBadRequest)
		return
	}

	if err := h.Store.Delete(r.Context(), h.OwnerID, phone); err != nil {
		h.Log.Error().Str("phone", phone).Err(err).Msg("failed to delete duplicate record")
		http.Error(w, "failed to delete duplicate record: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "phone": phone})
}
