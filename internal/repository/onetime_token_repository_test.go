package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneTimeTokenRepo(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedTestUser(t, s, "ott@example.com")
	now := time.Now().UTC()

	require.NoError(t, s.Verifications.Create(ctx, u.ID, "verify-me", now.Add(time.Hour)))
	require.NoError(t, s.Resets.Create(ctx, u.ID, "expired", now.Add(-time.Minute)))

	tok, err := s.Verifications.GetValid(ctx, "verify-me", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, tok.UserID)

	// tables are independent
	_, err = s.Resets.GetValid(ctx, "verify-me", now)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Resets.GetValid(ctx, "expired", now)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Verifications.Delete(ctx, tok.ID))
	assert.ErrorIs(t, s.Verifications.Delete(ctx, tok.ID), ErrNotFound)

	assert.ErrorIs(t, s.Resets.Create(ctx, u.ID, "expired", now.Add(time.Hour)), ErrDuplicateToken)
}
