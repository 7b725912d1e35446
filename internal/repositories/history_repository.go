package repositories

import (
	"context"

	"github.com/tiksave/backend/internal/models"
)

// HistoryRepository exposes data access for per-client resolve history.
type HistoryRepository interface {
	Record(ctx context.Context, clientID string, entry models.HistoryEntry) error
	Find(ctx context.Context, clientID, videoID string) (models.HistoryEntry, error)
	List(ctx context.Context, clientID string) ([]models.HistoryEntry, error)
	Clear(ctx context.Context, clientID string) error
}
