// Package clients issues and verifies anonymous client tokens. A client is
// a single browser or device; its token scopes history, favorites, and
// settings without any account signup.
package clients

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tiksave/backend/internal/models"
)

var (
	// ErrClientNotFound indicates the presented token does not map to a registered client.
	ErrClientNotFound = errors.New("client not found")
)

// ClientStore persists registered clients so tokens survive process restarts.
type ClientStore interface {
	Save(ctx context.Context, client models.Client) error
	FindByToken(ctx context.Context, token string) (models.Client, error)
	Touch(ctx context.Context, clientID string, seenAt time.Time) error
}

// Registry hands out client tokens and resolves them back to client records.
type Registry struct {
	store ClientStore
}

// NewRegistry constructs a Registry over the provided store.
func NewRegistry(store ClientStore) *Registry {
	if store == nil {
		panic("clients: store must not be nil")
	}
	return &Registry{store: store}
}

// Register creates a new anonymous client and returns it with a fresh token.
func (r *Registry) Register(ctx context.Context) (models.Client, error) {
	token, err := randomToken()
	if err != nil {
		return models.Client{}, err
	}

	now := time.Now().UTC()
	client := models.Client{
		ID:        uuid.NewString(),
		Token:     token,
		CreatedAt: now,
		LastSeen:  now,
	}

	if err := r.store.Save(ctx, client); err != nil {
		return models.Client{}, err
	}

	return client, nil
}

// Authenticate resolves a token to its client and records the access time.
func (r *Registry) Authenticate(ctx context.Context, token string) (models.Client, error) {
	if token == "" {
		return models.Client{}, ErrClientNotFound
	}

	client, err := r.store.FindByToken(ctx, token)
	if err != nil {
		return models.Client{}, err
	}

	// Last-seen tracking is advisory; a failed touch must not reject the request.
	_ = r.store.Touch(ctx, client.ID, time.Now().UTC())

	return client, nil
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
