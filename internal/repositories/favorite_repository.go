package repositories

import (
	"context"

	"github.com/tiksave/backend/internal/models"
)

// FavoriteRepository exposes data access for per-client saved videos.
type FavoriteRepository interface {
	Add(ctx context.Context, clientID string, record models.VideoRecord) error
	Remove(ctx context.Context, clientID, videoID string) error
	List(ctx context.Context, clientID string) ([]models.VideoRecord, error)
}
