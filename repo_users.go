package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserLookupField is the closed set of queryable credential fields. Lookups
// outside this set fail with ErrInvalidField.
type UserLookupField string

const (
	UserByID           UserLookupField = "id"
	UserByEmail        UserLookupField = "email"
	UserBySessionToken UserLookupField = "session_token"
	UserByResetToken   UserLookupField = "reset_token"
)

// CredentialPatch is a typed partial update of the mutable credential
// fields. Nil pointers leave a field untouched; the Clear flags null it.
type CredentialPatch struct {
	PasswordHash      *string
	SessionToken      *string
	ClearSessionToken bool
	ResetToken        *string
	ClearResetToken   bool
}

// IsEmpty reports whether the patch would touch nothing.
func (p CredentialPatch) IsEmpty() bool {
	return p.PasswordHash == nil &&
		p.SessionToken == nil && !p.ClearSessionToken &&
		p.ResetToken == nil && !p.ClearResetToken
}

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, email, passwordHash string) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, email, passwordHash string) (*User, error)

	FindBy(ctx context.Context, field UserLookupField, value string) (*User, error)
	FindByTx(ctx context.Context, tx bun.IDB, field UserLookupField, value string) (*User, error)

	UpdateCredentials(ctx context.Context, id uuid.UUID, patch CredentialPatch) error
	UpdateCredentialsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch CredentialPatch) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
	_ UserFinder                   = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, email, passwordHash string) (*User, error) {
	return a.RegisterTx(ctx, a.db, email, passwordHash)
}

// RegisterTx creates a new user record. Email matching is exact and case
// sensitive; a taken email leaves the store unchanged.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, email, passwordHash string) (*User, error) {
	if email == "" {
		return nil, goerrors.New("email cannot be empty", goerrors.CategoryValidation)
	}

	_, err := a.FindByTx(ctx, tx, UserByEmail, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !repository.IsRecordNotFound(err) && !goerrors.IsNotFound(err) {
		return nil, err
	}

	record := &User{
		Email:        email,
		PasswordHash: passwordHash,
	}

	record, err = a.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func (a *users) FindBy(ctx context.Context, field UserLookupField, value string) (*User, error) {
	return a.FindByTx(ctx, a.db, field, value)
}

// FindByTx looks a user up by one of the closed credential fields. If the
// storage holds several matches the lowest id wins, so repeated calls see
// the same record.
func (a *users) FindByTx(ctx context.Context, tx bun.IDB, field UserLookupField, value string) (*User, error) {
	switch field {
	case UserByID, UserByEmail, UserBySessionToken, UserByResetToken:
	default:
		return nil, ErrInvalidField
	}

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", string(field)), value).
		OrderExpr("?TableAlias.id ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"field": string(field),
				})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user lookup failed")
	}

	return record, nil
}

func (a *users) UpdateCredentials(ctx context.Context, id uuid.UUID, patch CredentialPatch) error {
	return a.UpdateCredentialsTx(ctx, a.db, id, patch)
}

// UpdateCredentialsTx applies the patch in a single statement so concurrent
// credential mutations on one row serialize at the storage layer.
func (a *users) UpdateCredentialsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch CredentialPatch) error {
	if patch.IsEmpty() {
		return ErrInvalidField
	}

	now := time.Now()
	q := tx.NewUpdate().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id)

	if patch.PasswordHash != nil {
		q = q.Set("password_hash = ?", *patch.PasswordHash)
	}

	if patch.SessionToken != nil {
		q = q.Set("session_token = ?", *patch.SessionToken).
			Set("session_created_at = ?", now)
	} else if patch.ClearSessionToken {
		q = q.Set("session_token = NULL").
			Set("session_created_at = NULL")
	}

	if patch.ResetToken != nil {
		q = q.Set("reset_token = ?", *patch.ResetToken)
	} else if patch.ClearResetToken {
		q = q.Set("reset_token = NULL")
	}

	res, err := q.Set("updated_at = ?", now).Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user credentials")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read update result")
	}

	if affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}
