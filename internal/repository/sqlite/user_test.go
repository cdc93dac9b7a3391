package sqlite

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/portfolio/internal/apperrors"
)

func Test_UserRepo(t *testing.T) {
	t.Run("create user ok", func(t *testing.T) {
		r := newTestStorage(t).User()

		user, err := r.CreateUser(t.Context(), "testuser", "hashedpassword123")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "testuser", user.Username)
		assert.Equal(t, "hashedpassword123", user.HashedPassword)
		assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
	})

	t.Run("duplicate username", func(t *testing.T) {
		r := newTestStorage(t).User()
		first, err := r.CreateUser(t.Context(), "taken", "hash-1")
		require.NoError(t, err)

		_, err = r.CreateUser(t.Context(), "taken", "hash-2")

		require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		got, err := r.GetUserByUsername(t.Context(), "taken")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID, "first user must stay untouched")
		assert.Equal(t, "hash-1", got.HashedPassword)
	})

	t.Run("get user by id ok", func(t *testing.T) {
		r := newTestStorage(t).User()
		created, err := r.CreateUser(t.Context(), "findbyid", "hashedpassword123")
		require.NoError(t, err)

		got, err := r.GetUserByID(t.Context(), created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Username, got.Username)
		assert.Equal(t, created.HashedPassword, got.HashedPassword)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "want %s, got %s", created.CreatedAt, got.CreatedAt)
	})

	t.Run("get user by id not found", func(t *testing.T) {
		r := newTestStorage(t).User()

		_, err := r.GetUserByID(t.Context(), uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("get user by username ok", func(t *testing.T) {
		r := newTestStorage(t).User()
		created, err := r.CreateUser(t.Context(), "findbyusername", "hashedpassword123")
		require.NoError(t, err)

		got, err := r.GetUserByUsername(t.Context(), "findbyusername")

		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("username lookup is case sensitive", func(t *testing.T) {
		r := newTestStorage(t).User()
		_, err := r.CreateUser(t.Context(), "Alice", "hash")
		require.NoError(t, err)

		_, err = r.GetUserByUsername(t.Context(), "alice")

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
