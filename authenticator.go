package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Credentials is the payload for registration and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(
			&c.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&c.Password,
			validation.Required,
		),
	)
}

// Auther holds the entry points the request handling layer calls into:
// register, login, authorize, logout, and the password reset pair.
type Auther struct {
	repo         RepositoryManager
	cfg          Config
	sessions     *SessionManager
	gate         *Gate
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Auther. Sessions default to the user-row
// store; use WithSessionStore to switch to the memory or table backends.
func NewAuthenticator(repo RepositoryManager, cfg Config) *Auther {
	sessions := NewSessionManager(NewUserRowSessionStore(repo.Users()), cfg.GetSessionDuration())

	a := &Auther{
		repo:         repo,
		cfg:          cfg,
		sessions:     sessions,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
	a.gate = NewGate(repo.Users(), sessions, nil)

	return a
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		s.sessions.WithLogger(logger)
		s.gate.WithLogger(logger)
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithSessionStore swaps the session backend, keeping the configured
// expiration policy.
func (s *Auther) WithSessionStore(store SessionStore) *Auther {
	if store != nil {
		s.sessions = NewSessionManager(store, s.cfg.GetSessionDuration()).WithLogger(s.logger)
		s.gate = NewGate(s.repo.Users(), s.sessions, s.gate.ExemptPaths()).WithLogger(s.logger)
	}
	return s
}

// WithExemptPaths declares the route patterns that bypass authentication.
func (s *Auther) WithExemptPaths(patterns ...string) *Auther {
	s.gate = NewGate(s.repo.Users(), s.sessions, patterns).WithLogger(s.logger)
	return s
}

// Sessions exposes the session manager to collaborators.
func (s *Auther) Sessions() *SessionManager {
	return s.sessions
}

// Gate exposes the authorization gate to collaborators.
func (s *Auther) Gate() *Gate {
	return s.gate
}

// Register creates a new user for the email/password pair. A taken email
// reports ErrDuplicateEmail and leaves the store untouched.
func (s *Auther) Register(ctx context.Context, email, password string) (*User, error) {
	payload := Credentials{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users().Register(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventRegistration, user.ID.String(), map[string]any{
		"email": email,
	})

	return user, nil
}

// Login verifies the credentials and issues a session token. A missing
// account and a wrong password both report ErrMismatchedHashAndPassword so
// callers cannot probe which emails are registered.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.Users().FindBy(ctx, UserByEmail, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
				"email": email,
			})
			return "", ErrMismatchedHashAndPassword
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"email": email,
		})
		return "", ErrMismatchedHashAndPassword
	}

	token, err := s.sessions.Create(ctx, user.ID.String())
	if err != nil {
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID.String(), map[string]any{
		"email": email,
	})

	return token, nil
}

// Authorize computes the per request decision for the given path and
// credentials.
func (s *Auther) Authorize(ctx context.Context, path, authHeader, sessionToken string) (Decision, error) {
	return s.gate.Authorize(ctx, path, authHeader, sessionToken)
}

// Logout destroys the session token. Destroying an unknown token is a safe
// no-op reporting false.
func (s *Auther) Logout(ctx context.Context, token string) (bool, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil && !IsInvalidTokenError(err) {
		return false, err
	}

	destroyed, err := s.sessions.Destroy(ctx, token)
	if err != nil {
		return false, err
	}

	if destroyed {
		s.emitAuthEvent(ctx, ActivityEventLogout, userID, nil)
	}

	return destroyed, nil
}

// RequestPasswordReset issues a single-use reset token for the email,
// replacing any earlier unredeemed token.
func (s *Auther) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var token string

	handler := NewInitializePasswordResetHandler(s.repo).
		WithLogger(s.logger).
		WithActivitySink(s.activitySink)

	err := handler.Execute(ctx, InitializePasswordResetMessage{
		Email: email,
		OnResponse: func(resp *InitializePasswordResetResponse) {
			token = resp.Token
		},
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// ApplyPasswordReset redeems a reset token, setting the new password and
// consuming the token in the same update.
func (s *Auther) ApplyPasswordReset(ctx context.Context, token, newPassword string) error {
	handler := NewFinalizePasswordResetHandler(s.repo).
		WithLogger(s.logger).
		WithActivitySink(s.activitySink)

	return handler.Execute(ctx, FinalizePasswordResetMessage{
		Token:    token,
		Password: newPassword,
	})
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
