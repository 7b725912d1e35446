package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tiksave/backend/internal/clients"
	"github.com/tiksave/backend/internal/db"
	"github.com/tiksave/backend/internal/models"
)

// PostgresClientStore persists registered clients to PostgreSQL.
type PostgresClientStore struct {
	pool db.Pool
}

// NewPostgresClientStore constructs a client store backed by PostgreSQL.
func NewPostgresClientStore(pool db.Pool) *PostgresClientStore {
	return &PostgresClientStore{pool: pool}
}

// Save stores or updates a client record.
func (s *PostgresClientStore) Save(ctx context.Context, client models.Client) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO clients (id, token, created_at, last_seen)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id)
        DO UPDATE SET token = EXCLUDED.token, last_seen = EXCLUDED.last_seen
    `, client.ID, client.Token, client.CreatedAt.UTC(), client.LastSeen.UTC())
	if err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}

	return nil
}

// FindByToken loads a client by its token.
func (s *PostgresClientStore) FindByToken(ctx context.Context, token string) (models.Client, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.Client{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, token, created_at, last_seen
        FROM clients
        WHERE token = $1
    `, token)

	var client models.Client
	if err := row.Scan(&client.ID, &client.Token, &client.CreatedAt, &client.LastSeen); err != nil {
		if err == pgx.ErrNoRows {
			return models.Client{}, clients.ErrClientNotFound
		}
		return models.Client{}, fmt.Errorf("select client: %w", err)
	}

	client.CreatedAt = client.CreatedAt.UTC()
	client.LastSeen = client.LastSeen.UTC()
	return client, nil
}

// Touch updates the last-seen timestamp for a client.
func (s *PostgresClientStore) Touch(ctx context.Context, clientID string, seenAt time.Time) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE clients
        SET last_seen = $2
        WHERE id = $1
    `, clientID, seenAt.UTC())
	if err != nil {
		return fmt.Errorf("update client last seen: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return clients.ErrClientNotFound
	}

	return nil
}

var _ clients.ClientStore = (*PostgresClientStore)(nil)
