package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/models"
	"github.com/tiksave/backend/internal/repositories"
)

// FavoriteHandler manages a client's saved videos.
type FavoriteHandler struct {
	Favorites FavoriteStore
	History   HistoryStore
}

type favoriteRequest struct {
	VideoID string `json:"videoId"`
}

// Collection implements GET and POST /api/v1/favorites.
func (h FavoriteHandler) Collection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Favorites == nil {
		logger.Error("favorite store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "favorites unavailable"})
		return
	}

	clientID := logging.ClientIDFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		records, err := h.Favorites.List(ctx, clientID)
		if err != nil {
			logger.Error("list favorites", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load favorites"})
			return
		}
		if records == nil {
			records = []models.VideoRecord{}
		}
		respondJSON(ctx, w, http.StatusOK, map[string]any{"favorites": records})

	case http.MethodPost:
		var req favoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid favorite payload", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.VideoID == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "videoId is required"})
			return
		}
		if h.History == nil {
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "favorites unavailable"})
			return
		}

		entry, err := h.History.Find(ctx, clientID, req.VideoID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found; resolve it first"})
				return
			}
			logger.Error("find history entry for favorite", "videoId", req.VideoID, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load video"})
			return
		}

		if err := h.Favorites.Add(ctx, clientID, entry.Record); err != nil {
			logger.Error("add favorite", "videoId", req.VideoID, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save favorite"})
			return
		}
		respondJSON(ctx, w, http.StatusCreated, entry.Record)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Item implements DELETE /api/v1/favorites/{id}.
func (h FavoriteHandler) Item(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := strings.TrimPrefix(r.URL.Path, "/api/v1/favorites/")
	if videoID == "" || strings.Contains(videoID, "/") {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "video id is required"})
		return
	}

	clientID := logging.ClientIDFromContext(ctx)
	if err := h.Favorites.Remove(ctx, clientID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "favorite not found"})
			return
		}
		logger.Error("remove favorite", "videoId", videoID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to remove favorite"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
