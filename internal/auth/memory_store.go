package auth

import (
	"context"
	"sync"

	"github.com/vidtube/backend/internal/models"
)

// NewInMemoryTokenStore returns a TokenStore backed by an in-memory map.
func NewInMemoryTokenStore(users ...models.User) *InMemoryTokenStore {
	s := &InMemoryTokenStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// InMemoryTokenStore implements TokenStore for tests and local development.
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// Put inserts or replaces a user.
func (s *InMemoryTokenStore) Put(user models.User) {
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
}

// FindByID returns the stored user or ErrSessionNotFound.
func (s *InMemoryTokenStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	user, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return models.User{}, ErrSessionNotFound
	}
	return user, nil
}

// SetRefreshToken records token as the user's current refresh token. Unknown
// users are created on the fly.
func (s *InMemoryTokenStore) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	user := s.users[userID]
	user.ID = userID
	user.RefreshToken = token
	s.users[userID] = user
	s.mu.Unlock()
	return nil
}

// SwapRefreshToken replaces current with next if current is still stored.
func (s *InMemoryTokenStore) SwapRefreshToken(_ context.Context, userID, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || current == "" || user.RefreshToken != current {
		return false, nil
	}
	user.RefreshToken = next
	s.users[userID] = user
	return true, nil
}
