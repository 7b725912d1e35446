package repositories

import (
	"context"

	"github.com/tiksave/backend/internal/models"
)

// JobRepository exposes data access for download jobs.
type JobRepository interface {
	Create(ctx context.Context, job models.DownloadJob) error
	Get(ctx context.Context, clientID, jobID string) (models.DownloadJob, error)
	ListForClient(ctx context.Context, clientID string) ([]models.DownloadJob, error)
	MarkReady(ctx context.Context, jobID, location string, size int64) error
	MarkFailed(ctx context.Context, jobID, reason string) error
}
