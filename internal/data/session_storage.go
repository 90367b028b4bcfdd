package data

import (
	"RandomWalkService/internal/model"
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when no session has the requested id
var ErrSessionNotFound = errors.New("session not found")

// StorageConfig holds configuration for the session storage
type StorageConfig struct {
	MaxSessions int
	SessionTTL  time.Duration
}

// DefaultStorageConfig returns sensible default configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		MaxSessions: 1000,
		SessionTTL:  30 * time.Minute,
	}
}

// InMemorySessionStorage keeps sessions in a map. Nothing survives a restart.
type InMemorySessionStorage struct {
	sessions map[string]model.Session
	config   StorageConfig
	now      func() time.Time
	mu       sync.RWMutex
}

// NewInMemorySessionStorage creates a new in-memory session storage with default config
func NewInMemorySessionStorage() *InMemorySessionStorage {
	return NewInMemorySessionStorageWithConfig(DefaultStorageConfig())
}

// NewInMemorySessionStorageWithConfig creates a new in-memory session storage with custom config
func NewInMemorySessionStorageWithConfig(config StorageConfig) *InMemorySessionStorage {
	return &InMemorySessionStorage{
		sessions: make(map[string]model.Session),
		config:   config,
		now:      time.Now,
	}
}

// Get returns a copy of the session with the given id
func (s *InMemorySessionStorage) Get(ctx context.Context, id string) (model.Session, error) {
	if err := ctx.Err(); err != nil {
		return model.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists || s.expired(session, s.now()) {
		return model.Session{}, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Save stores a copy of the session and stamps UpdatedAt. When the storage is
// full the least recently updated session is evicted.
func (s *InMemorySessionStorage) Save(ctx context.Context, session model.Session) (model.Session, error) {
	if err := ctx.Err(); err != nil {
		return model.Session{}, err
	}
	if session.ID == "" {
		return model.Session{}, errors.New("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; !exists && s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.evictOldest()
	}

	stored := session.Clone()
	stored.UpdatedAt = s.now()
	s.sessions[stored.ID] = stored

	return stored.Clone(), nil
}

// Delete removes a session, deleting an unknown id is not an error
func (s *InMemorySessionStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed
func (s *InMemorySessionStorage) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included until swept
func (s *InMemorySessionStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *InMemorySessionStorage) expired(session model.Session, now time.Time) bool {
	return s.config.SessionTTL > 0 && now.Sub(session.UpdatedAt) > s.config.SessionTTL
}

// evictOldest must be called with the write lock held
func (s *InMemorySessionStorage) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, session := range s.sessions {
		if oldestID == "" || session.UpdatedAt.Before(oldest) {
			oldestID = id
			oldest = session.UpdatedAt
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}
