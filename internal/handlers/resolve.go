package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tiksave/backend/internal/links"
	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/models"
	"github.com/tiksave/backend/internal/resolve"
)

// ResolveHandler validates submitted text, resolves it to a video record,
// records history, and optionally kicks off an automatic download.
type ResolveHandler struct {
	Resolver  LinkResolver
	History   HistoryStore
	Settings  SettingsStore
	Jobs      JobStore
	Downloads DownloadEnqueuer
	Limiter   RateLimiter

	// StrictProfiles turns the profile-link advisory into a rejection.
	StrictProfiles bool
	// PreferHD selects the HD rendition for automatic downloads.
	PreferHD bool

	NowFunc func() time.Time
}

type resolveRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type resolveResponse struct {
	Record  models.VideoRecord `json:"record"`
	Warning string             `json:"warning,omitempty"`
	JobID   string             `json:"jobId,omitempty"`
}

// Handle implements POST /api/v1/resolve and the share-target inbound
// GET /api/v1/resolve?url=...&text=... variant.
func (h ResolveHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var input string
	switch r.Method {
	case http.MethodPost:
		var req resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid resolve payload", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		input = req.URL
		if input == "" {
			input = req.Text
		}
	case http.MethodGet:
		// Shared-in content arrives as query parameters; url wins when
		// both are present.
		input = r.URL.Query().Get("url")
		if input == "" {
			input = r.URL.Query().Get("text")
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if h.Resolver == nil || h.History == nil {
		logger.Error("resolve dependencies unavailable", "hasResolver", h.Resolver != nil, "hasHistory", h.History != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "resolve service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "resolve") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests; slow down"})
		return
	}

	videoURL, warning, ok := h.extractURL(ctx, w, input)
	if !ok {
		return
	}

	lookupCtx, span := logging.StartSpan(ctx, "resolve.lookup")
	record, err := h.Resolver.Resolve(lookupCtx, videoURL)
	span.End()
	if err != nil {
		status, message := resolveErrorStatus(err)
		logger.Warn("resolve failed", "url", videoURL, "error", err)
		respondJSON(ctx, w, status, map[string]string{"error": message})
		return
	}

	clientID := logging.ClientIDFromContext(ctx)
	entry := models.HistoryEntry{CapturedAt: h.now(), Record: record}
	if err := h.History.Record(ctx, clientID, entry); err != nil {
		// The resolved record is still useful without the history write.
		logger.Error("record history entry", "videoId", record.ID, "error", err)
	}

	resp := resolveResponse{Record: record, Warning: warning}
	if jobID := h.maybeAutoDownload(ctx, clientID, record); jobID != "" {
		resp.JobID = jobID
	}

	respondJSON(ctx, w, http.StatusOK, resp)
}

func (h ResolveHandler) extractURL(ctx context.Context, w http.ResponseWriter, input string) (videoURL, warning string, ok bool) {
	videoURL, err := links.Extract(input)
	if err != nil {
		switch {
		case errors.Is(err, links.ErrProfileLink):
			if h.StrictProfiles {
				respondJSON(ctx, w, http.StatusUnprocessableEntity, map[string]string{"error": "this link points at a profile, not a video"})
				return "", "", false
			}
			return videoURL, "this looks like a profile link; results may be empty", true
		case errors.Is(err, links.ErrEmptyInput):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "paste a TikTok link first"})
		case errors.Is(err, links.ErrWrongDomain):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "only tiktok.com links are supported"})
		case errors.Is(err, links.ErrNoURLFound):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "no link found in the submitted text"})
		default:
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "could not read a link from the submitted text"})
		}
		return "", "", false
	}
	return videoURL, "", true
}

// maybeAutoDownload enqueues a download of the preferred kind when the
// client has auto-download enabled. Returns the job id, or "" when
// nothing was enqueued.
func (h ResolveHandler) maybeAutoDownload(ctx context.Context, clientID string, record models.VideoRecord) string {
	if h.Settings == nil || h.Jobs == nil || h.Downloads == nil {
		return ""
	}

	logger := logging.FromContext(ctx)

	settings, err := h.Settings.Get(ctx, clientID)
	if err != nil {
		logger.Error("load settings for auto-download", "error", err)
		return ""
	}
	if !settings.AutoDownload {
		return ""
	}

	job := models.DownloadJob{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		VideoID:   record.ID,
		Kind:      preferredKind(record, h.PreferHD),
		Status:    models.JobStatusPending,
		CreatedAt: h.now(),
	}

	if err := h.Jobs.Create(ctx, job); err != nil {
		logger.Error("create auto-download job", "videoId", record.ID, "error", err)
		return ""
	}
	if err := h.Downloads.Enqueue(ctx, job, record); err != nil {
		logger.Error("enqueue auto-download", "jobId", job.ID, "error", err)
		return ""
	}

	return job.ID
}

func (h ResolveHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// preferredKind picks the media variant for automatic downloads.
func preferredKind(record models.VideoRecord, preferHD bool) models.MediaKind {
	if record.IsSlideshow() {
		return models.KindSlideshow
	}
	if preferHD && record.HDMediaURL != "" {
		return models.KindVideoHD
	}
	return models.KindVideo
}

func resolveErrorStatus(err error) (int, string) {
	var upstream *resolve.UpstreamError
	switch {
	case errors.Is(err, resolve.ErrPrivateOrDeleted):
		return http.StatusNotFound, "this video is private or was deleted"
	case errors.Is(err, resolve.ErrRegionRestricted):
		return http.StatusForbidden, "this video is not available in your region"
	case errors.Is(err, resolve.ErrRateLimited):
		return http.StatusTooManyRequests, "lookup limit reached; wait a moment and try again"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "the lookup service rejected the request"
	default:
		return http.StatusBadGateway, "the lookup service is unavailable"
	}
}
