package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong-pass"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret-pass"))
}

func TestRandomURLSafe(t *testing.T) {
	a, err := RandomURLSafe(32)
	require.NoError(t, err)
	b, err := RandomURLSafe(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.NotContains(t, a, "=")
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("pw-with-bad-cost", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pw-with-bad-cost"))
}

func TestBurnPasswordCheckMatchesConfiguredCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 1} {
		got, err := bcrypt.Cost(dummyHash(cost))
		require.NoError(t, err)
		assert.Equal(t, cost, got)
		assert.NotPanics(t, func() { BurnPasswordCheck("anything", cost) })
	}

	got, err := bcrypt.Cost(dummyHash(99))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, got, "out of range costs clamp like HashPassword")
	assert.Same(t, &dummyHash(bcrypt.MinCost)[0], &dummyHash(bcrypt.MinCost)[0], "hash is built once per cost")
}
