package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
)

// ErrMalformedAuthHeader covers every Basic header decode failure: missing
// scheme, bad base64, invalid UTF-8, or no separator.
var ErrMalformedAuthHeader = errors.New("malformed authorization header")

const basicScheme = "Basic "

// Outcome is the per request authorization verdict.
type Outcome string

const (
	// OutcomeAllowed lets the request through, with or without a principal.
	OutcomeAllowed Outcome = "allowed"
	// OutcomeUnauthorized means auth is required and no credentials were sent.
	OutcomeUnauthorized Outcome = "unauthorized"
	// OutcomeForbidden means credentials were sent but resolve to nobody.
	OutcomeForbidden Outcome = "forbidden"
)

// Decision is computed per request and never persisted.
type Decision struct {
	Outcome   Outcome
	Principal *User
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed
}

// RequiresAuth decides whether a path is subject to authentication given a
// set of exempt patterns. Paths and exact patterns are normalized to a
// trailing slash before comparison; a pattern ending in "*" matches any
// path with that prefix. A pattern that merely extends the path does not
// exempt it.
func RequiresAuth(path string, exempt []string) bool {
	if path == "" || len(exempt) == 0 {
		return false
	}

	p := normalizeSlash(path)
	for _, pattern := range exempt {
		if pattern == "" {
			continue
		}

		if strings.HasSuffix(pattern, "*") {
			prefix := strings.TrimSuffix(pattern, "*")
			if strings.HasPrefix(p, prefix) {
				return false
			}
			continue
		}

		if p == normalizeSlash(pattern) {
			return false
		}
	}

	return true
}

func normalizeSlash(s string) string {
	if !strings.HasSuffix(s, "/") {
		return s + "/"
	}
	return s
}

// DecodeBasicCredentials extracts (email, password) from a Basic scheme
// authorization header. The scheme prefix is matched literally and the
// decoded payload splits on the first colon only, so passwords may contain
// colons.
func DecodeBasicCredentials(header string) (string, string, error) {
	if !strings.HasPrefix(header, basicScheme) {
		return "", "", ErrMalformedAuthHeader
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, basicScheme))
	if err != nil {
		return "", "", ErrMalformedAuthHeader
	}

	if !utf8.Valid(raw) {
		return "", "", ErrMalformedAuthHeader
	}

	decoded := string(raw)
	idx := strings.Index(decoded, ":")
	if idx < 0 {
		return "", "", ErrMalformedAuthHeader
	}

	return decoded[:idx], decoded[idx+1:], nil
}

// Gate composes the session manager and the credential store into the per
// request authorization decision.
type Gate struct {
	users    UserFinder
	sessions SessionResolver
	exempt   []string
	logger   Logger
	Debug    bool
}

func NewGate(users UserFinder, sessions SessionResolver, exempt []string) *Gate {
	return &Gate{
		users:    users,
		sessions: sessions,
		exempt:   exempt,
		logger:   defLogger{},
	}
}

func (g *Gate) WithLogger(logger Logger) *Gate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// ExemptPaths returns the configured exempt patterns.
func (g *Gate) ExemptPaths() []string {
	return g.exempt
}

// CurrentPrincipal resolves the caller from a Basic authorization header or
// a session token. Credential failures of any kind return a nil principal
// and nil error; only storage layer failures propagate.
func (g *Gate) CurrentPrincipal(ctx context.Context, authHeader, sessionToken string) (*User, error) {
	if authHeader != "" {
		return g.principalFromHeader(ctx, authHeader)
	}
	if sessionToken != "" {
		return g.principalFromSession(ctx, sessionToken)
	}
	return nil, nil
}

func (g *Gate) principalFromHeader(ctx context.Context, header string) (*User, error) {
	email, password, err := DecodeBasicCredentials(header)
	if err != nil {
		g.logger.Debug("basic auth decode failed", "error", err)
		return nil, nil
	}

	user, err := g.users.FindBy(ctx, UserByEmail, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, nil
	}

	return user, nil
}

func (g *Gate) principalFromSession(ctx context.Context, token string) (*User, error) {
	userID, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if IsInvalidTokenError(err) {
			return nil, nil
		}
		return nil, err
	}

	user, err := g.users.FindBy(ctx, UserByID, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// Authorize is the per request entry point used by the request handling
// layer. The error return is reserved for storage failures; every expected
// credential outcome is encoded in the Decision.
func (g *Gate) Authorize(ctx context.Context, path, authHeader, sessionToken string) (Decision, error) {
	if !RequiresAuth(path, g.exempt) {
		principal, err := g.CurrentPrincipal(ctx, authHeader, sessionToken)
		if err != nil {
			return Decision{}, err
		}
		return g.decided(path, Decision{Outcome: OutcomeAllowed, Principal: principal}), nil
	}

	if authHeader == "" && sessionToken == "" {
		return g.decided(path, Decision{Outcome: OutcomeUnauthorized}), nil
	}

	principal, err := g.CurrentPrincipal(ctx, authHeader, sessionToken)
	if err != nil {
		return Decision{}, err
	}

	if principal == nil {
		return g.decided(path, Decision{Outcome: OutcomeForbidden}), nil
	}

	return g.decided(path, Decision{Outcome: OutcomeAllowed, Principal: principal}), nil
}

func (g *Gate) decided(path string, d Decision) Decision {
	if g.Debug {
		g.logger.Debug(
			"authorization decision",
			"path", path,
			"decision", print.MaybePrettyJSON(map[string]any{
				"outcome":   d.Outcome,
				"principal": d.Principal,
			}),
		)
	}
	return d
}
