package auth

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemorySessionStore keeps the session mapping in process memory. It is an
// explicit instance, not a shared class-level map: every SessionManager owns
// its own store.
type MemorySessionStore struct {
	mu          sync.RWMutex
	byToken     map[string]SessionRecord
	tokenByUser map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		byToken:     map[string]SessionRecord{},
		tokenByUser: map[string]string{},
	}
}

func (s *MemorySessionStore) Save(_ context.Context, rec SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.tokenByUser[rec.UserID]; ok {
		delete(s.byToken, prior)
	}

	s.byToken[rec.Token] = rec
	s.tokenByUser[rec.UserID] = rec.Token
	return nil
}

func (s *MemorySessionStore) Find(_ context.Context, token string) (SessionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byToken[token]
	return rec, ok, nil
}

func (s *MemorySessionStore) DeleteToken(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byToken[token]
	if !ok {
		return false, nil
	}

	delete(s.byToken, token)
	if s.tokenByUser[rec.UserID] == token {
		delete(s.tokenByUser, rec.UserID)
	}
	return true, nil
}

var _ SessionStore = (*MemorySessionStore)(nil)

// UserRowSessionStore embeds the session on the user record itself: the
// session_token column is the mapping. Overwrite semantics fall out of the
// single column, one live token per user.
type UserRowSessionStore struct {
	users Users
}

func NewUserRowSessionStore(users Users) *UserRowSessionStore {
	return &UserRowSessionStore{users: users}
}

func (s *UserRowSessionStore) Save(ctx context.Context, rec SessionRecord) error {
	id, err := uuid.Parse(rec.UserID)
	if err != nil {
		return ErrInvalidUser
	}

	token := rec.Token
	return s.users.UpdateCredentials(ctx, id, CredentialPatch{
		SessionToken: &token,
	})
}

func (s *UserRowSessionStore) Find(ctx context.Context, token string) (SessionRecord, bool, error) {
	user, err := s.users.FindBy(ctx, UserBySessionToken, token)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return SessionRecord{}, false, nil
		}
		return SessionRecord{}, false, err
	}

	rec := SessionRecord{
		Token:  token,
		UserID: user.ID.String(),
	}
	if user.SessionAt != nil {
		rec.CreatedAt = *user.SessionAt
	}
	return rec, true, nil
}

func (s *UserRowSessionStore) DeleteToken(ctx context.Context, token string) (bool, error) {
	user, err := s.users.FindBy(ctx, UserBySessionToken, token)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	err = s.users.UpdateCredentials(ctx, user.ID, CredentialPatch{
		ClearSessionToken: true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

var _ SessionStore = (*UserRowSessionStore)(nil)

// TableSessionStore persists sessions in their own user_sessions table,
// looked up by the unique token column.
type TableSessionStore struct {
	db *bun.DB
}

func NewTableSessionStore(db *bun.DB) *TableSessionStore {
	return &TableSessionStore{db: db}
}

func (s *TableSessionStore) Save(ctx context.Context, rec SessionRecord) error {
	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return ErrInvalidUser
	}

	createdAt := rec.CreatedAt
	row := &UserSession{
		ID:           uuid.New(),
		SessionToken: rec.Token,
		UserID:       userID,
		CreatedAt:    &createdAt,
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*UserSession)(nil)).
			Where("?TableAlias.user_id = ?", userID).
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to replace prior session")
		}

		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
		}
		return nil
	})
}

func (s *TableSessionStore) Find(ctx context.Context, token string) (SessionRecord, bool, error) {
	row := &UserSession{}
	err := s.db.NewSelect().
		Model(row).
		Where("?TableAlias.session_token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return SessionRecord{}, false, nil
		}
		return SessionRecord{}, false, goerrors.Wrap(err, goerrors.CategoryInternal, "session lookup failed")
	}

	rec := SessionRecord{
		Token:  row.SessionToken,
		UserID: row.UserID.String(),
	}
	if row.CreatedAt != nil {
		rec.CreatedAt = *row.CreatedAt
	}
	return rec, true, nil
}

func (s *TableSessionStore) DeleteToken(ctx context.Context, token string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*UserSession)(nil)).
		Where("?TableAlias.session_token = ?", token).
		Exec(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to destroy session")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read delete result")
	}

	return affected > 0, nil
}

var _ SessionStore = (*TableSessionStore)(nil)
