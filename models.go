package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential record. Email comparison is case sensitive and a
// user carries at most one live session token and one live reset token.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	SessionToken  *string    `bun:"session_token,nullzero" json:"-"`
	SessionAt     *time.Time `bun:"session_created_at,nullzero" json:"-"`
	ResetToken    *string    `bun:"reset_token,nullzero" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasActiveSession reports whether the record carries a session token.
func (u *User) HasActiveSession() bool {
	return u != nil && u.SessionToken != nil && *u.SessionToken != ""
}

// UserSession is the durable form of the session mapping, used when sessions
// live in their own table instead of on the user row.
type UserSession struct {
	bun.BaseModel `bun:"table:user_sessions,alias:uss"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	SessionToken  string     `bun:"session_token,notnull,unique" json:"-"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
