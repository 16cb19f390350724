package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated principal
type Identity interface {
	ID() string
	Email() string
}

// Config holds auth options
type Config interface {
	// GetSessionDuration returns the session lifetime. Zero or negative
	// means sessions never expire by time.
	GetSessionDuration() time.Duration
	// GetSessionCookieName returns the name of the cookie transporting
	// the session token.
	GetSessionCookieName() string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// SessionRecord is the logical session mapping entry.
type SessionRecord struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

// SessionStore persists the token -> user mapping. Save replaces any prior
// record for the same user so a user holds at most one live token.
type SessionStore interface {
	Save(ctx context.Context, rec SessionRecord) error
	Find(ctx context.Context, token string) (SessionRecord, bool, error)
	// DeleteToken reports whether a record existed; deleting twice is safe.
	DeleteToken(ctx context.Context, token string) (bool, error)
}

// SessionResolver is the subset of SessionManager the authorization gate
// depends on.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// UserFinder is the store surface consumed by the gate and the session
// manager variants.
type UserFinder interface {
	FindBy(ctx context.Context, field UserLookupField, value string) (*User, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
