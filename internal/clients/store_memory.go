package clients

import (
	"context"
	"sync"
	"time"

	"github.com/tiksave/backend/internal/models"
)

// NewInMemoryClientStore returns a ClientStore backed by an in-memory map.
func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{byToken: make(map[string]models.Client)}
}

// InMemoryClientStore implements ClientStore for tests and local development.
type InMemoryClientStore struct {
	mu      sync.RWMutex
	byToken map[string]models.Client
}

// Save persists the provided client record.
func (s *InMemoryClientStore) Save(_ context.Context, client models.Client) error {
	s.mu.Lock()
	s.byToken[client.Token] = client
	s.mu.Unlock()
	return nil
}

// FindByToken retrieves a client by its token.
func (s *InMemoryClientStore) FindByToken(_ context.Context, token string) (models.Client, error) {
	s.mu.RLock()
	client, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return models.Client{}, ErrClientNotFound
	}
	return client, nil
}

// Touch updates the last-seen timestamp for a client.
func (s *InMemoryClientStore) Touch(_ context.Context, clientID string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, client := range s.byToken {
		if client.ID == clientID {
			client.LastSeen = seenAt
			s.byToken[token] = client
			return nil
		}
	}
	return ErrClientNotFound
}

var _ ClientStore = (*InMemoryClientStore)(nil)
