package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.auth.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, env.mailer.resets)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "olga@example.com", "old-password")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "olga@example.com"))
	require.Len(t, env.mailer.resets, 1)
	reset := env.mailer.resets[0]
	assert.Equal(t, "olga@example.com", reset.Email)

	require.NoError(t, env.auth.ResetPassword(ctx, reset.Token, "new-password"))

	_, err := env.auth.Login(ctx, "olga@example.com", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, "olga@example.com", "new-password")
	assert.NoError(t, err)

	err = env.auth.ResetPassword(ctx, reset.Token, "third-password")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken, "reset token is single use")
}

func TestPasswordResetExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "pete@example.com", "old-password")
	require.NoError(t, env.auth.RequestPasswordReset(ctx, "pete@example.com"))

	env.auth.now = func() time.Time { return time.Now().UTC().Add(3 * time.Hour) }
	err := env.auth.ResetPassword(ctx, env.mailer.resets[0].Token, "new-password")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}
