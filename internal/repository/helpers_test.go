package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-rbac/internal/database/databasetest"
	"github.com/iliyamo/auth-rbac/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(databasetest.New(t))
}

func seedTestUser(t *testing.T, s *Store, email string) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "hash"}
	_, err := s.Users.Create(context.Background(), &u)
	require.NoError(t, err, "seeding user %s", email)
	return u
}

func strPtr(s string) *string { return &s }
