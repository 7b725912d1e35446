package handlers

import (
	"net/http"

	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/models"
)

// HistoryHandler serves and clears a client's resolve history.
type HistoryHandler struct {
	History HistoryStore
}

// Handle implements GET and DELETE /api/v1/history.
func (h HistoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.History == nil {
		logger.Error("history store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}

	clientID := logging.ClientIDFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		entries, err := h.History.List(ctx, clientID)
		if err != nil {
			logger.Error("list history", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
			return
		}
		if entries == nil {
			entries = []models.HistoryEntry{}
		}
		respondJSON(ctx, w, http.StatusOK, map[string]any{"history": entries})

	case http.MethodDelete:
		if err := h.History.Clear(ctx, clientID); err != nil {
			logger.Error("clear history", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to clear history"})
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
