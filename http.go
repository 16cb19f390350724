package auth

import (
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator is the thin adapter between the request handling layer
// and the authorization gate: it pulls credentials out of the request and
// maps the gate's decision onto 401/403 responses. Routing itself stays in
// the host application.
type RouteAuthenticator struct {
	auth           *Auther
	cfg            Config
	cookieDuration time.Duration
	ContextKey     string
	Logger         Logger
	ErrorHandler   func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther *Auther, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetSessionDuration() > 0 {
		cookieDuration = cfg.GetSessionDuration()
	}

	a := &RouteAuthenticator{
		auth:           auther,
		cfg:            cfg,
		cookieDuration: cookieDuration,
		ContextKey:     "user",
		Logger:         defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// ProtectedRoute runs the authorization gate for every request. Exempt
// paths pass through without credentials; everything else needs a valid
// Basic header or session cookie.
func (a *RouteAuthenticator) ProtectedRoute() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			header := ctx.GetString(router.HeaderAuthorization, "")
			cookie := ctx.Cookies(a.cfg.GetSessionCookieName())

			decision, err := a.auth.Authorize(ctx.Context(), ctx.Path(), header, cookie)
			if err != nil {
				return a.ErrorHandler(ctx, err)
			}

			switch decision.Outcome {
			case OutcomeUnauthorized:
				return ctx.Status(router.StatusUnauthorized).SendString("Unauthorized")
			case OutcomeForbidden:
				return ctx.Status(router.StatusForbidden).SendString("Forbidden")
			}

			if decision.Principal != nil {
				ctx.Locals(a.ContextKey, decision.Principal)
				ctx.SetContext(WithContext(ctx.Context(), decision.Principal))
			}

			return ctx.Next()
		}
	}
}

// Login authenticates the payload and transports the session token in the
// configured cookie.
func (a *RouteAuthenticator) Login(ctx router.Context, payload Credentials) error {
	token, err := a.auth.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return nil
}

// Logout destroys the session behind the cookie and expires the cookie.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	token := ctx.Cookies(a.cfg.GetSessionCookieName())
	if token != "" {
		if _, err := a.auth.Logout(ctx.Context(), token); err != nil {
			a.Logger.Error("Logout error: %s", err)
		}
	}
	a.cookieDel(ctx, a.cfg.GetSessionCookieName())
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetSessionCookieName(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return c.Status(router.StatusUnauthorized).SendString("Unauthorized")
	default:
		return c.Status(router.StatusInternalServerError).SendString("Internal Server Error")
	}
}
