// Package downloads runs queued media downloads in the background so the
// HTTP surface can answer immediately with a pending job.
package downloads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tiksave/backend/internal/acquire"
	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/models"
	"github.com/tiksave/backend/internal/storage"
)

// JobStatusUpdater persists status transitions for download jobs.
type JobStatusUpdater interface {
	MarkReady(ctx context.Context, jobID, location string, size int64) error
	MarkFailed(ctx context.Context, jobID, reason string) error
}

// DownloadCounter records completed downloads against a client's settings.
type DownloadCounter interface {
	IncrementDownloadCount(ctx context.Context, clientID string) error
}

// MediaFetcher retrieves raw media bytes through the fallback chain.
type MediaFetcher interface {
	Fetch(ctx context.Context, mediaURL string) ([]byte, error)
}

// ImageArchiver packages a slideshow's images into a single archive.
type ImageArchiver interface {
	ArchiveImages(ctx context.Context, imageURLs []string) ([]byte, error)
}

// DownloaderConfig controls the concurrency characteristics of the pool.
type DownloaderConfig struct {
	QueueSize int
	Workers   int
	// Timeout bounds one job's fetch plus store.
	Timeout time.Duration
}

// Downloader asynchronously materializes media for queued jobs.
type Downloader struct {
	fetcher  MediaFetcher
	archiver ImageArchiver
	storage  storage.AssetStorage
	updater  JobStatusUpdater
	counter  DownloadCounter
	logger   *slog.Logger
	timeout  time.Duration

	jobs   chan downloadJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type downloadJob struct {
	job    models.DownloadJob
	record models.VideoRecord
}

var errDownloaderClosed = errors.New("downloader closed")

// The failure text surfaced when every acquisition route is spent. The
// media stays reachable on TikTok itself, so point the user there.
const exhaustedGuidance = "all download routes failed; try again later or open the video on tiktok.com"

// NewDownloader constructs a background worker pool that materializes media.
func NewDownloader(fetcher MediaFetcher, archiver ImageArchiver, store storage.AssetStorage, updater JobStatusUpdater, counter DownloadCounter, cfg DownloaderConfig, logger *slog.Logger) *Downloader {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Downloader{
		fetcher:  fetcher,
		archiver: archiver,
		storage:  store,
		updater:  updater,
		counter:  counter,
		logger:   logger,
		timeout:  cfg.Timeout,
		jobs:     make(chan downloadJob, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}

	return d
}

// Enqueue schedules a download for the supplied job and record.
func (d *Downloader) Enqueue(ctx context.Context, job models.DownloadJob, record models.VideoRecord) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.ctx.Done():
		return errDownloaderClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.ctx.Done():
		return errDownloaderClosed
	case d.jobs <- downloadJob{job: job, record: record}:
		return nil
	}
}

// Shutdown stops the worker pool and waits for in-flight jobs to finish.
// The jobs channel is never closed so a concurrent Enqueue observes the
// canceled context instead of a send on a closed channel.
func (d *Downloader) Shutdown(ctx context.Context) error {
	d.once.Do(d.cancel)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (d *Downloader) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case job := <-d.jobs:
			d.handleJob(job)
		}
	}
}

func (d *Downloader) handleJob(dj downloadJob) {
	if d.fetcher == nil || d.storage == nil || d.updater == nil {
		d.logger.Error("downloader missing dependencies", "hasFetcher", d.fetcher != nil, "hasStorage", d.storage != nil, "hasUpdater", d.updater != nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	ctx = logging.WithLogger(ctx, d.logger.With("jobId", dj.job.ID, "videoId", dj.record.ID, "kind", dj.job.Kind))
	ctx, span := logging.StartSpan(ctx, "download")
	defer span.End()
	logger := logging.FromContext(ctx)

	body, err := d.materialize(ctx, dj)
	if err != nil {
		logger.Error("download failed", "error", err)
		d.recordFailure(dj.job.ID, failureReason(err))
		return
	}

	name := storage.BuildFilename(dj.record, dj.job.Kind)
	location, err := d.storage.Save(ctx, name, storage.KindContentType(dj.job.Kind), bytes.NewReader(body))
	if err != nil {
		logger.Error("store download", "name", name, "error", err)
		d.recordFailure(dj.job.ID, "could not store the downloaded file")
		return
	}

	if err := d.recordSuccess(dj.job.ID, location, int64(len(body))); err != nil {
		logger.Error("mark download ready", "error", err)
		d.recordFailure(dj.job.ID, "could not record the completed download")
		return
	}

	if d.counter != nil {
		countCtx, countCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.counter.IncrementDownloadCount(countCtx, dj.job.ClientID); err != nil {
			logger.Warn("increment download count", "clientId", dj.job.ClientID, "error", err)
		}
		countCancel()
	}
}

func (d *Downloader) materialize(ctx context.Context, dj downloadJob) ([]byte, error) {
	if dj.job.Kind == models.KindSlideshow {
		if d.archiver == nil {
			return nil, errors.New("no archiver configured")
		}
		return d.archiver.ArchiveImages(ctx, dj.record.ImageURLs)
	}

	mediaURL, err := mediaURLFor(dj.record, dj.job.Kind)
	if err != nil {
		return nil, err
	}
	return d.fetcher.Fetch(ctx, mediaURL)
}

func mediaURLFor(record models.VideoRecord, kind models.MediaKind) (string, error) {
	switch kind {
	case models.KindVideo:
		if record.StandardMediaURL == "" {
			return "", errors.New("record has no standard media url")
		}
		return record.StandardMediaURL, nil
	case models.KindVideoHD:
		// Not every post has an HD rendition.
		if record.HDMediaURL != "" {
			return record.HDMediaURL, nil
		}
		if record.StandardMediaURL == "" {
			return "", errors.New("record has no media url")
		}
		return record.StandardMediaURL, nil
	case models.KindAudio:
		if record.AudioURL == "" {
			return "", errors.New("record has no audio url")
		}
		return record.AudioURL, nil
	default:
		return "", fmt.Errorf("unsupported media kind %q", kind)
	}
}

func failureReason(err error) string {
	if errors.Is(err, acquire.ErrExhausted) {
		return exhaustedGuidance
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the download timed out; try again later"
	}
	return err.Error()
}

func (d *Downloader) recordFailure(jobID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.updater.MarkFailed(ctx, jobID, reason); err != nil {
		d.logger.Error("record download failure", "jobId", jobID, "error", err)
	}
}

func (d *Downloader) recordSuccess(jobID, location string, size int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return d.updater.MarkReady(ctx, jobID, location, size)
}
