// Package archive packages slideshow image sets into a single zip so a
// multi-image post downloads as one file.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tiksave/backend/internal/logging"
	"github.com/tiksave/backend/internal/storage"
)

// ErrNoImages indicates every image in the batch failed to download.
var ErrNoImages = errors.New("no images could be acquired")

// MediaFetcher is the acquisition entry point the archiver runs per image.
type MediaFetcher interface {
	Fetch(ctx context.Context, mediaURL string) ([]byte, error)
}

// Archiver zips slideshow images fetched through the fallback chain.
type Archiver struct {
	Fetcher MediaFetcher
	// MaxConcurrent bounds in-flight image fetches; defaults to 4.
	MaxConcurrent int
}

// NewArchiver constructs an Archiver over the given fetcher.
func NewArchiver(fetcher MediaFetcher) *Archiver {
	return &Archiver{Fetcher: fetcher, MaxConcurrent: 4}
}

// ArchiveImages fetches every image URL concurrently (bounded) and writes
// the successes into one zip under sequential numeric names, preserving
// input order. Individual failures are logged and skipped; only a fully
// failed batch is an error.
func (a *Archiver) ArchiveImages(ctx context.Context, imageURLs []string) ([]byte, error) {
	if a == nil || a.Fetcher == nil {
		return nil, errors.New("archiver: fetcher not configured")
	}
	if len(imageURLs) == 0 {
		return nil, ErrNoImages
	}

	logger := logging.FromContext(ctx)
	logger.Info("starting slideshow archive", "images", len(imageURLs))

	limit := a.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}

	results := make([][]byte, len(imageURLs))
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, imageURL := range imageURLs {
		wg.Add(1)
		go func(i int, imageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			body, err := a.Fetcher.Fetch(ctx, imageURL)
			if err != nil {
				logger.Warn("skipping image", "index", i, "error", err)
				return
			}
			results[i] = body
		}(i, imageURL)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	archived := 0
	for _, body := range results {
		if body == nil {
			continue
		}
		archived++
		entry, err := zw.Create(storage.BuildImageFilename(archived))
		if err != nil {
			return nil, fmt.Errorf("create archive entry: %w", err)
		}
		if _, err := entry.Write(body); err != nil {
			return nil, fmt.Errorf("write archive entry: %w", err)
		}
	}

	if archived == 0 {
		return nil, ErrNoImages
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	logger.Info("slideshow archive complete", "archived", archived, "skipped", len(imageURLs)-archived)
	return buf.Bytes(), nil
}
