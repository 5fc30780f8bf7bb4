// Package session provides session management for authenticated
// console users.
//
// Sessions carry the logged-in user's identity and role with automatic
// expiration. The Store interface has two implementations:
//   - memory: in-memory storage for development and tests
//   - redis: Redis-backed storage for multi-instance deployments
//
// # Usage
//
// Create a store and a session after a successful login:
//
//	store := session.NewMemoryStore()
//
//	sess, err := session.New(user.ID, user.Email, string(user.Role), session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
// Look sessions up by the cookie value on every request:
//
//	sess, err := store.Get(ctx, cookie.Value)
//	if err != nil {
//	    // not logged in, expired, or backend failure
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/dentflow/dentflow/pkg/errors"
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session stores the authenticated user's identity.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Missing and expired sessions both
	// return a SESSION_NOT_FOUND / SESSION_EXPIRED coded error.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session until its expiry.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions. May be a no-op for backends
	// with native expiry.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "generating session id")
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for the given user.
func New(userID, email, role string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		UserID:    userID,
		Email:     email,
		Role:      role,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
