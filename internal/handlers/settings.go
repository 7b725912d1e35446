package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tiksave/backend/internal/logging"
)

// SettingsHandler serves and updates per-client preferences.
type SettingsHandler struct {
	Settings SettingsStore
}

type settingsRequest struct {
	Theme        string `json:"theme"`
	AutoDownload bool   `json:"autoDownload"`
	Language     string `json:"language"`
	TutorialSeen bool   `json:"tutorialSeen"`
}

// Handle implements GET and PUT /api/v1/settings.
func (h SettingsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Settings == nil {
		logger.Error("settings store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "settings unavailable"})
		return
	}

	clientID := logging.ClientIDFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		settings, err := h.Settings.Get(ctx, clientID)
		if err != nil {
			logger.Error("load settings", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
			return
		}
		respondJSON(ctx, w, http.StatusOK, settings)

	case http.MethodPut:
		var req settingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid settings payload", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		req.Theme = strings.TrimSpace(req.Theme)
		switch req.Theme {
		case "system", "light", "dark":
		default:
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "theme must be system, light, or dark"})
			return
		}
		if strings.TrimSpace(req.Language) == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "language is required"})
			return
		}

		// The download counter is server-owned and survives preference
		// updates untouched.
		current, err := h.Settings.Get(ctx, clientID)
		if err != nil {
			logger.Error("load settings before update", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
			return
		}
		current.Theme = req.Theme
		current.AutoDownload = req.AutoDownload
		current.Language = strings.TrimSpace(req.Language)
		current.TutorialSeen = req.TutorialSeen

		if err := h.Settings.Put(ctx, clientID, current); err != nil {
			logger.Error("save settings", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
			return
		}
		respondJSON(ctx, w, http.StatusOK, current)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
