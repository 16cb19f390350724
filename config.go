package auth

import (
	"os"
	"strconv"
	"time"
)

// Environment variables recognized by NewConfigFromEnv.
const (
	EnvSessionDuration   = "SESSION_DURATION"
	EnvSessionCookieName = "SESSION_COOKIE_NAME"
)

// DefaultSessionCookieName is used when SESSION_COOKIE_NAME is unset.
const DefaultSessionCookieName = "_session_id"

// SimpleConfig is a value implementation of Config.
type SimpleConfig struct {
	// SessionDuration in seconds; <= 0 means sessions never expire.
	SessionDuration   int
	SessionCookieName string
}

func (c SimpleConfig) GetSessionDuration() time.Duration {
	if c.SessionDuration <= 0 {
		return 0
	}
	return time.Duration(c.SessionDuration) * time.Second
}

func (c SimpleConfig) GetSessionCookieName() string {
	if c.SessionCookieName == "" {
		return DefaultSessionCookieName
	}
	return c.SessionCookieName
}

// NewConfigFromEnv reads SESSION_DURATION (seconds) and
// SESSION_COOKIE_NAME. A missing or malformed duration means no expiry.
func NewConfigFromEnv() SimpleConfig {
	cfg := SimpleConfig{
		SessionCookieName: os.Getenv(EnvSessionCookieName),
	}

	if raw := os.Getenv(EnvSessionDuration); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil {
			cfg.SessionDuration = seconds
		}
	}

	return cfg
}

var _ Config = SimpleConfig{}
