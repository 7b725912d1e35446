package repositories

import (
	"context"

	"github.com/tiksave/backend/internal/models"
)

// SettingsRepository exposes data access for per-client preferences.
type SettingsRepository interface {
	// Get returns the client's settings, or defaults when none are saved.
	Get(ctx context.Context, clientID string) (models.Settings, error)
	Put(ctx context.Context, clientID string, settings models.Settings) error
	IncrementDownloadCount(ctx context.Context, clientID string) error
}
