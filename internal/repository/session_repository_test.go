package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_Lifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedTestUser(t, s, "sess@example.com")
	exp := time.Now().Add(time.Hour)

	for _, jti := range []string{"a", "b", "c"} {
		require.NoError(t, s.Sessions.Create(ctx, u.ID, jti, exp))
	}

	live, err := s.Sessions.IsLive(ctx, "a")
	require.NoError(t, err)
	assert.True(t, live)

	n, err := s.Sessions.DeleteByJTI(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = s.Sessions.DeleteByJTI(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "second delete finds nothing")

	live, err = s.Sessions.IsLive(ctx, "a")
	require.NoError(t, err)
	assert.False(t, live)

	sessions, err := s.Sessions.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].JTI)

	n, err = s.Sessions.DeleteAllForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSessionRepo_LiveIgnoresExpiry(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedTestUser(t, s, "old@example.com")

	require.NoError(t, s.Sessions.Create(ctx, u.ID, "stale", time.Now().Add(-time.Hour)))
	live, err := s.Sessions.IsLive(ctx, "stale")
	require.NoError(t, err)
	assert.True(t, live, "IsLive checks row presence only")
}

func TestSessionRepo_DuplicateJTI(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedTestUser(t, s, "dupjti@example.com")
	exp := time.Now().Add(time.Hour)

	require.NoError(t, s.Sessions.Create(ctx, u.ID, "same", exp))
	assert.ErrorIs(t, s.Sessions.Create(ctx, u.ID, "same", exp), ErrDuplicateToken)
}

func TestSessionRepo_CascadeOnUserDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedTestUser(t, s, "cascade@example.com")

	require.NoError(t, s.Sessions.Create(ctx, u.ID, "gone", time.Now().Add(time.Hour)))
	_, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", u.ID)
	require.NoError(t, err)

	live, err := s.Sessions.IsLive(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, live, "sessions are removed with their user")
}
