package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tiksave/backend/internal/db"
	"github.com/tiksave/backend/internal/downloads"
	"github.com/tiksave/backend/internal/models"
)

const recordColumns = `video_id, source_url, media_url, hd_media_url, audio_url,
        image_urls, cover_url, title, author_name, author_avatar,
        play_count, like_count, size_bytes, hd_size_bytes`

func scanRecord(row pgx.Row) (models.VideoRecord, error) {
	var record models.VideoRecord
	err := row.Scan(
		&record.ID, &record.SourceURL, &record.StandardMediaURL, &record.HDMediaURL, &record.AudioURL,
		&record.ImageURLs, &record.CoverImageURL, &record.Title, &record.Author.DisplayName, &record.Author.AvatarURL,
		&record.Stats.PlayCount, &record.Stats.LikeCount, &record.ApproxSizeBytes, &record.ApproxHDBytes,
	)
	return record, err
}

func recordArgs(clientID string, record models.VideoRecord) []any {
	imageURLs := record.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return []any{
		clientID,
		record.ID, record.SourceURL, record.StandardMediaURL, record.HDMediaURL, record.AudioURL,
		imageURLs, record.CoverImageURL, record.Title, record.Author.DisplayName, record.Author.AvatarURL,
		record.Stats.PlayCount, record.Stats.LikeCount, record.ApproxSizeBytes, record.ApproxHDBytes,
	}
}

// PostgresHistoryRepository provides PostgreSQL-backed persistence for resolve history.
type PostgresHistoryRepository struct {
	pool  db.Pool
	limit int
}

// NewPostgresHistoryRepository constructs a history repository that trims
// each client's history to at most limit entries.
func NewPostgresHistoryRepository(pool db.Pool, limit int) *PostgresHistoryRepository {
	if limit <= 0 {
		limit = 50
	}
	return &PostgresHistoryRepository{pool: pool, limit: limit}
}

// Record stores a history entry. A repeat of the same video replaces the
// earlier entry and moves it to the front; the client's history is then
// trimmed to the configured maximum.
func (r *PostgresHistoryRepository) Record(ctx context.Context, clientID string, entry models.HistoryEntry) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	capturedAt := entry.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	args := append(recordArgs(clientID, entry.Record), capturedAt)
	_, err = conn.Exec(ctx, `
        INSERT INTO history_entries (client_id, `+recordColumns+`, captured_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (client_id, video_id)
        DO UPDATE SET
            source_url = EXCLUDED.source_url,
            media_url = EXCLUDED.media_url,
            hd_media_url = EXCLUDED.hd_media_url,
            audio_url = EXCLUDED.audio_url,
            image_urls = EXCLUDED.image_urls,
            cover_url = EXCLUDED.cover_url,
            title = EXCLUDED.title,
            author_name = EXCLUDED.author_name,
            author_avatar = EXCLUDED.author_avatar,
            play_count = EXCLUDED.play_count,
            like_count = EXCLUDED.like_count,
            size_bytes = EXCLUDED.size_bytes,
            hd_size_bytes = EXCLUDED.hd_size_bytes,
            captured_at = EXCLUDED.captured_at
    `, args...)
	if err != nil {
		return fmt.Errorf("upsert history entry: %w", err)
	}

	_, err = conn.Exec(ctx, `
        DELETE FROM history_entries
        WHERE client_id = $1
          AND video_id NOT IN (
            SELECT video_id FROM history_entries
            WHERE client_id = $1
            ORDER BY captured_at DESC
            LIMIT $2
        )
    `, clientID, r.limit)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return nil
}

// Find fetches one of the client's history entries by video id.
func (r *PostgresHistoryRepository) Find(ctx context.Context, clientID, videoID string) (models.HistoryEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.HistoryEntry{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+recordColumns+`, captured_at
        FROM history_entries
        WHERE client_id = $1 AND video_id = $2
    `, clientID, videoID)

	var (
		entry      models.HistoryEntry
		capturedAt time.Time
	)
	if err := row.Scan(
		&entry.Record.ID, &entry.Record.SourceURL, &entry.Record.StandardMediaURL, &entry.Record.HDMediaURL, &entry.Record.AudioURL,
		&entry.Record.ImageURLs, &entry.Record.CoverImageURL, &entry.Record.Title, &entry.Record.Author.DisplayName, &entry.Record.Author.AvatarURL,
		&entry.Record.Stats.PlayCount, &entry.Record.Stats.LikeCount, &entry.Record.ApproxSizeBytes, &entry.Record.ApproxHDBytes,
		&capturedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.HistoryEntry{}, ErrNotFound
		}
		return models.HistoryEntry{}, fmt.Errorf("select history entry: %w", err)
	}
	entry.CapturedAt = capturedAt.UTC()

	return entry, nil
}

// List returns the client's history, newest first.
func (r *PostgresHistoryRepository) List(ctx context.Context, clientID string) ([]models.HistoryEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+recordColumns+`, captured_at
        FROM history_entries
        WHERE client_id = $1
        ORDER BY captured_at DESC
        LIMIT $2
    `, clientID, r.limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			entry      models.HistoryEntry
			capturedAt time.Time
		)
		if err := rows.Scan(
			&entry.Record.ID, &entry.Record.SourceURL, &entry.Record.StandardMediaURL, &entry.Record.HDMediaURL, &entry.Record.AudioURL,
			&entry.Record.ImageURLs, &entry.Record.CoverImageURL, &entry.Record.Title, &entry.Record.Author.DisplayName, &entry.Record.Author.AvatarURL,
			&entry.Record.Stats.PlayCount, &entry.Record.Stats.LikeCount, &entry.Record.ApproxSizeBytes, &entry.Record.ApproxHDBytes,
			&capturedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.CapturedAt = capturedAt.UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// Clear deletes the client's entire history.
func (r *PostgresHistoryRepository) Clear(ctx context.Context, clientID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM history_entries
        WHERE client_id = $1
    `, clientID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	return nil
}

// PostgresFavoriteRepository provides PostgreSQL-backed persistence for saved videos.
type PostgresFavoriteRepository struct {
	pool db.Pool
}

// NewPostgresFavoriteRepository constructs a favorite repository backed by PostgreSQL.
func NewPostgresFavoriteRepository(pool db.Pool) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{pool: pool}
}

// Add saves a video for the client. Re-adding an existing favorite
// refreshes its record and is not an error.
func (r *PostgresFavoriteRepository) Add(ctx context.Context, clientID string, record models.VideoRecord) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	args := append(recordArgs(clientID, record), time.Now().UTC())
	_, err = conn.Exec(ctx, `
        INSERT INTO favorites (client_id, `+recordColumns+`, saved_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (client_id, video_id)
        DO UPDATE SET
            source_url = EXCLUDED.source_url,
            media_url = EXCLUDED.media_url,
            hd_media_url = EXCLUDED.hd_media_url,
            audio_url = EXCLUDED.audio_url,
            image_urls = EXCLUDED.image_urls,
            cover_url = EXCLUDED.cover_url,
            title = EXCLUDED.title,
            author_name = EXCLUDED.author_name,
            author_avatar = EXCLUDED.author_avatar,
            play_count = EXCLUDED.play_count,
            like_count = EXCLUDED.like_count,
            size_bytes = EXCLUDED.size_bytes,
            hd_size_bytes = EXCLUDED.hd_size_bytes
    `, args...)
	if err != nil {
		return fmt.Errorf("upsert favorite: %w", err)
	}

	return nil
}

// Remove deletes a saved video.
func (r *PostgresFavoriteRepository) Remove(ctx context.Context, clientID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM favorites
        WHERE client_id = $1 AND video_id = $2
    `, clientID, videoID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// List returns the client's saved videos, most recently saved first.
func (r *PostgresFavoriteRepository) List(ctx context.Context, clientID string) ([]models.VideoRecord, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+recordColumns+`
        FROM favorites
        WHERE client_id = $1
        ORDER BY saved_at DESC
    `, clientID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var records []models.VideoRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return records, nil
}

// PostgresSettingsRepository provides PostgreSQL-backed persistence for client preferences.
type PostgresSettingsRepository struct {
	pool db.Pool
}

// NewPostgresSettingsRepository constructs a settings repository backed by PostgreSQL.
func NewPostgresSettingsRepository(pool db.Pool) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{pool: pool}
}

// Get returns the client's settings, falling back to defaults when the
// client has never saved any.
func (r *PostgresSettingsRepository) Get(ctx context.Context, clientID string) (models.Settings, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT theme, auto_download, language, tutorial_seen, download_count
        FROM client_settings
        WHERE client_id = $1
    `, clientID)

	var settings models.Settings
	if err := row.Scan(&settings.Theme, &settings.AutoDownload, &settings.Language, &settings.TutorialSeen, &settings.DownloadCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultSettings(), nil
		}
		return models.Settings{}, fmt.Errorf("select settings: %w", err)
	}

	return settings, nil
}

// Put stores the client's settings, replacing any previous values.
func (r *PostgresSettingsRepository) Put(ctx context.Context, clientID string, settings models.Settings) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO client_settings (client_id, theme, auto_download, language, tutorial_seen, download_count, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (client_id)
        DO UPDATE SET
            theme = EXCLUDED.theme,
            auto_download = EXCLUDED.auto_download,
            language = EXCLUDED.language,
            tutorial_seen = EXCLUDED.tutorial_seen,
            download_count = EXCLUDED.download_count,
            updated_at = EXCLUDED.updated_at
    `, clientID, settings.Theme, settings.AutoDownload, settings.Language, settings.TutorialSeen, settings.DownloadCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}

	return nil
}

// IncrementDownloadCount bumps the client's completed download counter,
// creating the settings row with defaults when it does not exist yet.
func (r *PostgresSettingsRepository) IncrementDownloadCount(ctx context.Context, clientID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	defaults := models.DefaultSettings()
	_, err = conn.Exec(ctx, `
        INSERT INTO client_settings (client_id, theme, auto_download, language, tutorial_seen, download_count, updated_at)
        VALUES ($1, $2, $3, $4, $5, 1, $6)
        ON CONFLICT (client_id)
        DO UPDATE SET
            download_count = client_settings.download_count + 1,
            updated_at = EXCLUDED.updated_at
    `, clientID, defaults.Theme, defaults.AutoDownload, defaults.Language, defaults.TutorialSeen, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}

	return nil
}

// PostgresJobRepository provides PostgreSQL-backed persistence for download jobs.
type PostgresJobRepository struct {
	pool db.Pool
}

// NewPostgresJobRepository constructs a job repository backed by PostgreSQL.
func NewPostgresJobRepository(pool db.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{pool: pool}
}

// Create stores a new download job record.
func (r *PostgresJobRepository) Create(ctx context.Context, job models.DownloadJob) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO download_jobs (id, client_id, video_id, kind, status, location, size_bytes, error, created_at, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, job.ID, job.ClientID, job.VideoID, string(job.Kind), job.Status, job.Location, job.SizeBytes, job.Error, job.CreatedAt, job.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert download job: %w", err)
	}

	return nil
}

// Get fetches one of the client's jobs by id.
func (r *PostgresJobRepository) Get(ctx context.Context, clientID, jobID string) (models.DownloadJob, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.DownloadJob{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, client_id, video_id, kind, status, location, size_bytes, error, created_at, completed_at
        FROM download_jobs
        WHERE client_id = $1 AND id = $2
    `, clientID, jobID)

	return scanJob(row)
}

// ListForClient returns the client's jobs, newest first.
func (r *PostgresJobRepository) ListForClient(ctx context.Context, clientID string) ([]models.DownloadJob, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, client_id, video_id, kind, status, location, size_bytes, error, created_at, completed_at
        FROM download_jobs
        WHERE client_id = $1
        ORDER BY created_at DESC
        LIMIT 100
    `, clientID)
	if err != nil {
		return nil, fmt.Errorf("query download jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.DownloadJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate download jobs: %w", err)
	}

	return jobs, nil
}

// MarkReady records a completed download's location and size.
func (r *PostgresJobRepository) MarkReady(ctx context.Context, jobID, location string, size int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE download_jobs
        SET status = $2,
            location = $3,
            size_bytes = $4,
            error = '',
            completed_at = $5
        WHERE id = $1
    `, jobID, models.JobStatusReady, location, size, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update download job ready: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkFailed records a failed download attempt with a reason shown to the client.
func (r *PostgresJobRepository) MarkFailed(ctx context.Context, jobID, reason string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE download_jobs
        SET status = $2,
            location = '',
            size_bytes = 0,
            error = $3,
            completed_at = $4
        WHERE id = $1
    `, jobID, models.JobStatusFailed, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update download job failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanJob(row pgx.Row) (models.DownloadJob, error) {
	var (
		job         models.DownloadJob
		kind        string
		completedAt *time.Time
	)
	if err := row.Scan(&job.ID, &job.ClientID, &job.VideoID, &kind, &job.Status, &job.Location, &job.SizeBytes, &job.Error, &job.CreatedAt, &completedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DownloadJob{}, ErrNotFound
		}
		return models.DownloadJob{}, fmt.Errorf("scan download job: %w", err)
	}
	job.Kind = models.MediaKind(kind)
	if completedAt != nil {
		t := completedAt.UTC()
		job.CompletedAt = &t
	}
	return job, nil
}

var _ HistoryRepository = (*PostgresHistoryRepository)(nil)
var _ FavoriteRepository = (*PostgresFavoriteRepository)(nil)
var _ SettingsRepository = (*PostgresSettingsRepository)(nil)
var _ JobRepository = (*PostgresJobRepository)(nil)
var _ downloads.JobStatusUpdater = (*PostgresJobRepository)(nil)
