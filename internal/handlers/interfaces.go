package handlers

import (
	"context"

	"github.com/tiksave/backend/internal/models"
)

// LinkResolver turns a validated TikTok URL into a normalized record.
type LinkResolver interface {
	Resolve(ctx context.Context, videoURL string) (models.VideoRecord, error)
}

// TrendingSource lists popular videos for discovery.
type TrendingSource interface {
	Trending(ctx context.Context, keywords string, count int) ([]models.VideoRecord, error)
}

// HistoryStore captures persistence for per-client resolve history.
type HistoryStore interface {
	Record(ctx context.Context, clientID string, entry models.HistoryEntry) error
	Find(ctx context.Context, clientID, videoID string) (models.HistoryEntry, error)
	List(ctx context.Context, clientID string) ([]models.HistoryEntry, error)
	Clear(ctx context.Context, clientID string) error
}

// FavoriteStore captures persistence for per-client saved videos.
type FavoriteStore interface {
	Add(ctx context.Context, clientID string, record models.VideoRecord) error
	Remove(ctx context.Context, clientID, videoID string) error
	List(ctx context.Context, clientID string) ([]models.VideoRecord, error)
}

// SettingsStore captures persistence for per-client preferences.
type SettingsStore interface {
	Get(ctx context.Context, clientID string) (models.Settings, error)
	Put(ctx context.Context, clientID string, settings models.Settings) error
}

// JobStore captures persistence for download jobs.
type JobStore interface {
	Create(ctx context.Context, job models.DownloadJob) error
	Get(ctx context.Context, clientID, jobID string) (models.DownloadJob, error)
	ListForClient(ctx context.Context, clientID string) ([]models.DownloadJob, error)
}

// DownloadEnqueuer schedules background media downloads.
type DownloadEnqueuer interface {
	Enqueue(ctx context.Context, job models.DownloadJob, record models.VideoRecord) error
}

// ClientRegistry creates anonymous client identities.
type ClientRegistry interface {
	Register(ctx context.Context) (models.Client, error)
}
