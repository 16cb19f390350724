package auth_test

import (
	"context"
	"testing"

	auth "github.com/houssame-aithsain/alx-backend-user-data"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Email: "ctx@example.com"}

	ctx := auth.WithContext(context.Background(), user)
	found, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, found)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestGetRouterPrincipal(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Email: "locals@example.com"}

	t.Run("principal present", func(t *testing.T) {
		ctx := new(MockContext)
		ctx.On("Locals", "user").Return(user)

		found, ok := auth.GetRouterPrincipal(ctx, "user")
		require.True(t, ok)
		assert.Equal(t, user, found)
	})

	t.Run("empty key falls back to default", func(t *testing.T) {
		ctx := new(MockContext)
		ctx.On("Locals", "user").Return(user)

		found, ok := auth.GetRouterPrincipal(ctx, "")
		require.True(t, ok)
		assert.Equal(t, user, found)
	})

	t.Run("no principal stored", func(t *testing.T) {
		ctx := new(MockContext)
		ctx.On("Locals", "user").Return(nil)

		found, ok := auth.GetRouterPrincipal(ctx, "user")
		assert.False(t, ok)
		assert.Nil(t, found)
	})

	t.Run("unexpected type stored", func(t *testing.T) {
		ctx := new(MockContext)
		ctx.On("Locals", "user").Return("not-a-user")

		found, ok := auth.GetRouterPrincipal(ctx, "user")
		assert.False(t, ok)
		assert.Nil(t, found)
	})
}
