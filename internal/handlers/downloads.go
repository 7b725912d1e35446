package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tiksave/backend/internal/links"
	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/models"
	"github.com/tiksave/backend/internal/repositories"
)

// DownloadHandler enqueues media downloads and reports job status.
type DownloadHandler struct {
	Jobs      JobStore
	History   HistoryStore
	Resolver  LinkResolver
	Downloads DownloadEnqueuer
	NowFunc   func() time.Time
}

type downloadRequest struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
	Kind    string `json:"kind"`
}

// Create handles POST /api/v1/downloads.
func (h DownloadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.list(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Jobs == nil || h.Downloads == nil {
		logger.Error("download dependencies unavailable", "hasJobs", h.Jobs != nil, "hasDownloads", h.Downloads != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "download service unavailable"})
		return
	}

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid download payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	kind := models.MediaKind(strings.TrimSpace(req.Kind))
	if !kind.Valid() {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "kind must be one of video, video_hd, audio, slideshow"})
		return
	}

	clientID := logging.ClientIDFromContext(ctx)
	record, ok := h.lookupRecord(ctx, w, clientID, req)
	if !ok {
		return
	}

	if record.IsSlideshow() && (kind == models.KindVideo || kind == models.KindVideoHD) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "this post is a slideshow; request the slideshow or audio kind"})
		return
	}
	if !record.IsSlideshow() && kind == models.KindSlideshow {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "this post is not a slideshow"})
		return
	}

	job := models.DownloadJob{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		VideoID:   record.ID,
		Kind:      kind,
		Status:    models.JobStatusPending,
		CreatedAt: h.now(),
	}

	if err := h.Jobs.Create(ctx, job); err != nil {
		logger.Error("create download job", "videoId", record.ID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create download job"})
		return
	}

	if err := h.Downloads.Enqueue(ctx, job, record); err != nil {
		logger.Error("enqueue download", "jobId", job.ID, "error", err)
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "download queue is full; try again shortly"})
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, job)
}

// Status handles GET /api/v1/downloads/{id}.
func (h DownloadHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	jobID := strings.TrimPrefix(r.URL.Path, "/api/v1/downloads/")
	if jobID == "" || strings.Contains(jobID, "/") {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "download job id is required"})
		return
	}

	clientID := logging.ClientIDFromContext(ctx)
	job, err := h.Jobs.Get(ctx, clientID, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "download job not found"})
			return
		}
		logger.Error("load download job", "jobId", jobID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load download job"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, job)
}

func (h DownloadHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	clientID := logging.ClientIDFromContext(ctx)
	jobs, err := h.Jobs.ListForClient(ctx, clientID)
	if err != nil {
		logger.Error("list download jobs", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list downloads"})
		return
	}

	if jobs == nil {
		jobs = []models.DownloadJob{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"downloads": jobs})
}

// lookupRecord finds the record to download, either from the client's
// history by video id or by resolving a fresh URL.
func (h DownloadHandler) lookupRecord(ctx context.Context, w http.ResponseWriter, clientID string, req downloadRequest) (models.VideoRecord, bool) {
	logger := logging.FromContext(ctx)

	switch {
	case req.VideoID != "":
		if h.History == nil {
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "download service unavailable"})
			return models.VideoRecord{}, false
		}
		entry, err := h.History.Find(ctx, clientID, req.VideoID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found; resolve it first"})
				return models.VideoRecord{}, false
			}
			logger.Error("find history entry", "videoId", req.VideoID, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load video"})
			return models.VideoRecord{}, false
		}
		return entry.Record, true

	case req.URL != "":
		if h.Resolver == nil {
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "download service unavailable"})
			return models.VideoRecord{}, false
		}
		videoURL, err := links.Extract(req.URL)
		if err != nil && !errors.Is(err, links.ErrProfileLink) {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "only tiktok.com links are supported"})
			return models.VideoRecord{}, false
		}
		record, err := h.Resolver.Resolve(ctx, videoURL)
		if err != nil {
			status, message := resolveErrorStatus(err)
			logger.Warn("resolve for download failed", "url", videoURL, "error", err)
			respondJSON(ctx, w, status, map[string]string{"error": message})
			return models.VideoRecord{}, false
		}
		return record, true

	default:
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "videoId or url is required"})
		return models.VideoRecord{}, false
	}
}

func (h DownloadHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
