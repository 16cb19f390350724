package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/houssame-aithsain/alx-backend-user-data"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManagerCreateAndResolve(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(auth.NewMemorySessionStore(), 0)

	userID := uuid.NewString()
	token, err := manager.Create(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := manager.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestSessionManagerCreateEmptyUser(t *testing.T) {
	manager := auth.NewSessionManager(auth.NewMemorySessionStore(), 0)

	_, err := manager.Create(context.Background(), "")
	require.Error(t, err)
	assert.True(t, auth.HasTextCode(err, auth.TextCodeInvalidUser))
}

func TestSessionManagerResolveInvalidTokens(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(auth.NewMemorySessionStore(), 0)

	_, err := manager.Resolve(ctx, "")
	assert.True(t, auth.IsInvalidTokenError(err))

	_, err = manager.Resolve(ctx, "never-issued")
	assert.True(t, auth.IsInvalidTokenError(err))
}

func TestSessionManagerSingleSessionPerUser(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(auth.NewMemorySessionStore(), 0)

	userID := uuid.NewString()

	token1, err := manager.Create(ctx, userID)
	require.NoError(t, err)

	token2, err := manager.Create(ctx, userID)
	require.NoError(t, err)
	require.NotEqual(t, token1, token2)

	// the earlier token stops resolving the moment a new one is issued
	_, err = manager.Resolve(ctx, token1)
	assert.True(t, auth.IsInvalidTokenError(err))

	resolved, err := manager.Resolve(ctx, token2)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestSessionManagerDestroy(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(auth.NewMemorySessionStore(), 0)

	token, err := manager.Create(ctx, uuid.NewString())
	require.NoError(t, err)

	destroyed, err := manager.Destroy(ctx, token)
	require.NoError(t, err)
	assert.True(t, destroyed)

	_, err = manager.Resolve(ctx, token)
	assert.True(t, auth.IsInvalidTokenError(err))

	// destroying again is a safe no-op
	destroyed, err = manager.Destroy(ctx, token)
	require.NoError(t, err)
	assert.False(t, destroyed)

	destroyed, err = manager.Destroy(ctx, "")
	require.NoError(t, err)
	assert.False(t, destroyed)
}

func TestSessionManagerExpiration(t *testing.T) {
	ctx := context.Background()
	duration := 10 * time.Second

	base := time.Now()
	current := base
	manager := auth.NewSessionManager(auth.NewMemorySessionStore(), duration).
		WithClock(func() time.Time { return current })

	userID := uuid.NewString()
	token, err := manager.Create(ctx, userID)
	require.NoError(t, err)

	// one second before the deadline the token still resolves
	current = base.Add(duration - time.Second)
	resolved, err := manager.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)

	// exactly at the deadline it still resolves
	current = base.Add(duration)
	_, err = manager.Resolve(ctx, token)
	require.NoError(t, err)

	// one second past the deadline it is gone
	current = base.Add(duration + time.Second)
	_, err = manager.Resolve(ctx, token)
	assert.True(t, auth.IsInvalidTokenError(err))
}

func TestSessionManagerNoExpiryWithZeroDuration(t *testing.T) {
	ctx := context.Background()

	base := time.Now()
	current := base
	manager := auth.NewSessionManager(auth.NewMemorySessionStore(), 0).
		WithClock(func() time.Time { return current })

	token, err := manager.Create(ctx, uuid.NewString())
	require.NoError(t, err)

	current = base.Add(1000 * time.Hour)
	_, err = manager.Resolve(ctx, token)
	assert.NoError(t, err)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemorySessionStore()

	rec := auth.SessionRecord{Token: "tok-1", UserID: "user-1", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, rec))

	found, ok, err := store.Find(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.UserID, found.UserID)

	_, ok, err = store.Find(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	// saving a second record for the same user drops the first token
	require.NoError(t, store.Save(ctx, auth.SessionRecord{Token: "tok-2", UserID: "user-1"}))
	_, ok, err = store.Find(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)

	deleted, err := store.DeleteToken(ctx, "tok-2")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteToken(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, deleted)
}
