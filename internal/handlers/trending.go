package handlers

import (
	"net/http"
	"strconv"

	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/models"
)

const (
	defaultTrendingCount = 12
	maxTrendingCount     = 30
)

// TrendingHandler lists popular videos for the discovery view.
type TrendingHandler struct {
	Source  TrendingSource
	Limiter RateLimiter
}

// Handle implements GET /api/v1/trending.
func (h TrendingHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Source == nil {
		logger.Error("trending source unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "trending unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "trending") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests; slow down"})
		return
	}

	keywords := r.URL.Query().Get("keywords")
	count := defaultTrendingCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "count must be a positive number"})
			return
		}
		count = parsed
	}
	if count > maxTrendingCount {
		count = maxTrendingCount
	}

	lookupCtx, span := logging.StartSpan(ctx, "trending.lookup")
	records, err := h.Source.Trending(lookupCtx, keywords, count)
	span.End()
	if err != nil {
		status, message := resolveErrorStatus(err)
		logger.Warn("trending lookup failed", "keywords", keywords, "error", err)
		respondJSON(ctx, w, status, map[string]string{"error": message})
		return
	}

	if records == nil {
		records = []models.VideoRecord{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": records})
}
