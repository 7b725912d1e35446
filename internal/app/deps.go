package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/tiksave/backend/internal/acquire"
	"github.com/tiksave/backend/internal/archive"
	"github.com/tiksave/backend/internal/clients"
	"github.com/tiksave/backend/internal/config"
	"github.com/tiksave/backend/internal/db"
	"github.com/tiksave/backend/internal/downloads"
	"github.com/tiksave/backend/internal/handlers"
	"github.com/tiksave/backend/internal/middleware"
	"github.com/tiksave/backend/internal/repositories"
	"github.com/tiksave/backend/internal/resolve"
	"github.com/tiksave/backend/internal/storage"
)

// buildDependencies wires together the concrete implementations used by
// the HTTP handlers. The returned cleanup drains the download pool.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, func(context.Context) error, error) {
	tikwm := resolve.NewTikwmProvider(cfg.LookupBaseURL, cfg.LookupHD, cfg.LookupTimeout)
	provider := resolve.NewCachingProvider(tikwm, cfg.MetadataCacheTTL)

	fetcher := acquire.NewFetcher(cfg.ProxyEndpoints, cfg.AcquireTimeout, cfg.MaxMediaBytes)
	archiver := archive.NewArchiver(fetcher)

	store, err := buildAssetStorage(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	jobs := repositories.NewPostgresJobRepository(pool)
	settings := repositories.NewPostgresSettingsRepository(pool)

	downloader := downloads.NewDownloader(fetcher, archiver, store, jobs, settings, downloads.DownloaderConfig{
		QueueSize: cfg.DownloadQueue,
		Workers:   cfg.DownloadWorkers,
		Timeout:   downloadTimeout(cfg.AcquireTimeout),
	}, slog.Default())

	registry := clients.NewRegistry(repositories.NewPostgresClientStore(pool))

	limiter := middleware.NewIPRateLimiter(cfg.ResolveRatePerMinute, time.Minute, cfg.ResolveRateBurst, 10*time.Minute)

	deps := handlers.Dependencies{
		Clients:        registry,
		Resolver:       provider,
		Trending:       tikwm,
		History:        repositories.NewPostgresHistoryRepository(pool, cfg.HistoryLimit),
		Favorites:      repositories.NewPostgresFavoriteRepository(pool),
		Settings:       settings,
		Jobs:           jobs,
		Downloads:      downloader,
		LookupLimiter:  limiter,
		ClientAuth:     middleware.ClientAuth(registry),
		StrictProfiles: cfg.StrictProfileCheck,
		PreferHD:       cfg.PreferHD,
	}

	cleanup := func(ctx context.Context) error {
		return downloader.Shutdown(ctx)
	}

	return deps, cleanup, nil
}

// buildAssetStorage picks the object store when a bucket is configured,
// otherwise the local download directory.
func buildAssetStorage(ctx context.Context, cfg config.Config) (storage.AssetStorage, error) {
	if cfg.ObjectStore.Bucket != "" {
		return storage.NewS3Storage(ctx, cfg.ObjectStore)
	}
	return storage.NewLocalStorage(cfg.DownloadDir)
}

// A single fetch may walk the whole proxy chain, so the job budget is a
// multiple of the per-chain timeout.
func downloadTimeout(acquireTimeout time.Duration) time.Duration {
	if t := 2 * acquireTimeout; t > 2*time.Minute {
		return t
	}
	return 2 * time.Minute
}
