package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-rbac/internal/config"
	"github.com/iliyamo/auth-rbac/internal/database"
	"github.com/iliyamo/auth-rbac/internal/database/databasetest"
	"github.com/iliyamo/auth-rbac/internal/logging"
	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/repository"
	"github.com/iliyamo/auth-rbac/internal/token"
)

type sentMail struct {
	Email string
	Token string
}

type recordingMailer struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
}

func (m *recordingMailer) SendVerification(email, tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, sentMail{email, tok})
}

func (m *recordingMailer) SendPasswordReset(email, tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, sentMail{email, tok})
}

func (m *recordingMailer) lastVerification(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verifications, "no verification email sent")
	return m.verifications[len(m.verifications)-1]
}

type testEnv struct {
	db     *database.DB
	store  *repository.Store
	codec  *token.Codec
	mailer *recordingMailer
	auth   *AuthService
	gate   *PermissionGate
	users  *UserService
	access *AccessService
}

var testTokenConfig = config.TokenConfig{
	SecretKey:              "test-secret",
	Algorithm:              "HS256",
	AccessExpireMinutes:    15,
	RefreshExpireDays:      7,
	VerifyEmailExpireMin:   1440,
	ResetPasswordExpireMin: 120,
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := databasetest.New(t)
	store := repository.NewStore(db)
	codec, err := token.NewCodec(testTokenConfig.SecretKey, testTokenConfig.Algorithm)
	require.NoError(t, err)
	mailer := &recordingMailer{}
	log := logging.Discard()

	return &testEnv{
		db:     db,
		store:  store,
		codec:  codec,
		mailer: mailer,
		auth:   NewAuthService(store, codec, mailer, log, testTokenConfig, 4),
		gate:   NewPermissionGate(store),
		users:  NewUserService(store, log),
		access: NewAccessService(store, log),
	}
}

// registerVerified registers email and completes email verification.
func (e *testEnv) registerVerified(t *testing.T, email, password string) model.User {
	t.Helper()
	ctx := context.Background()

	u, err := e.auth.Register(ctx, RegisterInput{Email: email, Password: password, PasswordConfirm: password})
	require.NoError(t, err)
	require.NoError(t, e.auth.VerifyEmail(ctx, e.mailer.lastVerification(t).Token))
	return u
}

func (e *testEnv) jti(t *testing.T, raw string, typ token.Type) string {
	t.Helper()
	c, err := e.codec.Decode(raw, typ)
	require.NoError(t, err)
	return c.JTI
}

func (e *testEnv) isLive(t *testing.T, jti string) bool {
	t.Helper()
	live, err := e.store.Sessions.IsLive(context.Background(), jti)
	require.NoError(t, err)
	return live
}

func (e *testEnv) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}
