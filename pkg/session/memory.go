package session

import (
	"context"
	"sync"

	"github.com/dentflow/dentflow/pkg/errors"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive
// restarts; use the Redis store in production.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*Session{}}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session not found")
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, sessionID)
		return nil, errors.New(errors.ErrCodeSessionExpired, "session expired")
	}
	dup := *sess
	return &dup, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	dup := *sess
	s.mu.Lock()
	s.sessions[sess.ID] = &dup
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}
