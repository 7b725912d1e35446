package handlers

import (
	"net/http"

	"github.com/tiksave/backend/internal/logging"
)

// ClientHandler registers anonymous clients.
type ClientHandler struct {
	Registry ClientRegistry
}

// Register handles POST /api/v1/clients.
func (h ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Registry == nil {
		logger.Error("client registry unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "client registration unavailable"})
		return
	}

	client, err := h.Registry.Register(ctx)
	if err != nil {
		logger.Error("register client", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to register client"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{
		"clientId": client.ID,
		"token":    client.Token,
	})
}
