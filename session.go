package auth

import (
	"context"
	"time"
)

// SessionManager owns the session token lifecycle: create on login, resolve
// on every authenticated request, destroy on logout. Expiration is lazy: a
// stale record may linger in storage but will never resolve again.
type SessionManager struct {
	store    SessionStore
	duration time.Duration
	logger   Logger
	now      func() time.Time
}

// NewSessionManager builds a manager around an explicit store. A zero or
// negative duration means sessions never expire by time.
func NewSessionManager(store SessionStore, duration time.Duration) *SessionManager {
	return &SessionManager{
		store:    store,
		duration: duration,
		logger:   defLogger{},
		now:      time.Now,
	}
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithClock overrides the time source, mostly for expiry tests.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	if now != nil {
		m.now = now
	}
	return m
}

// Create issues a fresh token for the user and records it. Any prior token
// for the same user stops resolving immediately: at most one active session
// per user.
func (m *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrInvalidUser
	}

	token, err := NewToken()
	if err != nil {
		m.logger.Error("session token generation failed", "error", err)
		return "", err
	}

	rec := SessionRecord{
		Token:     token,
		UserID:    userID,
		CreatedAt: m.now(),
	}

	if err := m.store.Save(ctx, rec); err != nil {
		return "", err
	}

	return token, nil
}

// Resolve maps a token back to its user id. Unknown tokens and, when a
// duration is configured, tokens past created_at + duration both report
// ErrInvalidSessionToken.
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSessionToken
	}

	rec, ok, err := m.store.Find(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidSessionToken
	}

	if m.duration > 0 && m.now().After(rec.CreatedAt.Add(m.duration)) {
		return "", ErrInvalidSessionToken
	}

	return rec.UserID, nil
}

// Destroy removes the mapping for token. It is idempotent: destroying an
// unknown or already destroyed token reports (false, nil).
func (m *SessionManager) Destroy(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return m.store.DeleteToken(ctx, token)
}

var _ SessionResolver = (*SessionManager)(nil)
