package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiksave/backend/internal/models"
)

// Provider resolves a cleaned TikTok link into a normalized record.
type Provider interface {
	Resolve(ctx context.Context, url string) (models.VideoRecord, error)
}

// TrendingProvider looks up popular posts for a keyword search.
type TrendingProvider interface {
	Trending(ctx context.Context, keywords string, count int) ([]models.VideoRecord, error)
}

var (
	// ErrProviderUnavailable indicates the lookup provider is not configured.
	ErrProviderUnavailable = errors.New("metadata lookup provider unavailable")
	// ErrPrivateOrDeleted indicates the upstream reported the post as
	// private or removed.
	ErrPrivateOrDeleted = errors.New("video is private or deleted")
	// ErrRegionRestricted indicates the upstream could not parse the link,
	// which in practice means a region-locked or geo-fenced post.
	ErrRegionRestricted = errors.New("video is region restricted")
	// ErrRateLimited indicates the upstream's free quota was exceeded.
	ErrRateLimited = errors.New("lookup rate limit exceeded")
)

// UpstreamError carries a non-success lookup response that does not match
// any of the classified sentinel errors.
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("lookup failed (code %d): %s", e.Code, e.Message)
}
