package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-rbac/internal/config"
	"github.com/iliyamo/auth-rbac/internal/database"
	"github.com/iliyamo/auth-rbac/internal/database/databasetest"
	"github.com/iliyamo/auth-rbac/internal/handler"
	"github.com/iliyamo/auth-rbac/internal/logging"
	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/repository"
	"github.com/iliyamo/auth-rbac/internal/service"
	"github.com/iliyamo/auth-rbac/internal/token"
)

type inbox struct {
	mu     sync.Mutex
	verify map[string]string
	reset  map[string]string
}

func (b *inbox) SendVerification(email, tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verify[email] = tok
}

func (b *inbox) SendPasswordReset(email, tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset[email] = tok
}

func (b *inbox) verifyToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.verify[email]
}

func (b *inbox) resetToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reset[email]
}

type app struct {
	e      *echo.Echo
	db     *database.DB
	inbox  *inbox
	access *service.AccessService
}

func newApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{
		Token: config.TokenConfig{
			SecretKey: "router-test", Algorithm: "HS256",
			AccessExpireMinutes: 15, RefreshExpireDays: 7,
			VerifyEmailExpireMin: 60, ResetPasswordExpireMin: 60,
		},
		Cookie: config.CookieConfig{Secure: true, Path: "/v1/auth"},
	}
	db := databasetest.New(t)
	store := repository.NewStore(db)
	codec, err := token.NewCodec(cfg.Token.SecretKey, cfg.Token.Algorithm)
	require.NoError(t, err)
	box := &inbox{verify: map[string]string{}, reset: map[string]string{}}
	log := logging.Discard()

	auth := service.NewAuthService(store, codec, box, log, cfg.Token, 4)
	users := service.NewUserService(store, log)
	access := service.NewAccessService(store, log)

	e := New(Deps{
		Auth:   handler.NewAuthHandler(auth, cfg, log),
		Users:  handler.NewUserHandler(users, auth, log),
		Access: handler.NewAccessHandler(access, log),
		Authn:  auth,
		Gate:   service.NewPermissionGate(store),
		Log:    log,
	}, []string{"http://localhost:3000"})
	return &app{e: e, db: db, inbox: box, access: access}
}

type call struct {
	method, path, body, bearer string
	cookie                     *http.Cookie
	accept                     string
}

func (a *app) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	if c.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if c.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.bearer)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.accept != "" {
		req.Header.Set(echo.HeaderAccept, c.accept)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "refresh_token" {
			return ck
		}
	}
	require.FailNow(t, "no refresh_token cookie in response")
	return nil
}

// signUp registers and verifies email, then logs in.
func (a *app) signUp(t *testing.T, email, password string) (string, *http.Cookie) {
	t.Helper()
	rec := a.do(t, call{method: http.MethodPost, path: "/v1/auth/register",
		body: `{"email":"` + email + `","password":"` + password + `"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/auth/verify-email?token=" + a.inbox.verifyToken(email)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/login",
		body: `{"email":"` + email + `","password":"` + password + `"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["access_token"].(string), refreshCookie(t, rec)
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := a.do(t, call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSessionLifecycle(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, call{method: http.MethodPost, path: "/v1/auth/register",
		body: `{"email":"ann@example.com","password":"password123","first_name":"Ann"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode(t, rec)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, false, user["is_verified"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/login",
		body: `{"email":"ann@example.com","password":"password123"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "email not verified", decode(t, rec)["error"])

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/auth/verify-email?token=" + a.inbox.verifyToken("ann@example.com")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/login",
		body: `{"email":"ann@example.com","password":"password123"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "bearer", body["token_type"])
	access := body["access_token"].(string)
	cookie := refreshCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/v1/auth", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 7*24*3600, cookie.MaxAge)
	assert.NotContains(t, rec.Body.String(), cookie.Value, "refresh token only travels in the cookie")

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/users/me", bearer: access})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, "Ann", me["first_name"])
	assert.Equal(t, []any{"user"}, me["roles"])

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/refresh", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newAccess := decode(t, rec)["access_token"].(string)
	newCookie := refreshCookie(t, rec)
	assert.NotEqual(t, cookie.Value, newCookie.Value)

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/users/me", bearer: access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh signs out the old access token")
	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/refresh", cookie: cookie})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "old refresh token is revoked")

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/logout", cookie: newCookie})
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := refreshCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/users/me", bearer: newAccess})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshAndLogoutWithoutCookie(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, call{method: http.MethodPost, path: "/v1/auth/refresh"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no refresh token provided", decode(t, rec)["error"])

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/logout"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	a := newApp(t)

	for _, body := range []string{
		`{"email":"not-an-email","password":"password123"}`,
		`{"email":"ok@example.com","password":"short"}`,
		`{"email":"ok@example.com"}`,
		`not json`,
	} {
		rec := a.do(t, call{method: http.MethodPost, path: "/v1/auth/register", body: body})
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	a.signUp(t, "dup@example.com", "password123")
	rec := a.do(t, call{method: http.MethodPost, path: "/v1/auth/register",
		body: `{"email":"dup@example.com","password":"password123"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user already exists", decode(t, rec)["error"])
}

func TestVerifyEmailPages(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, call{method: http.MethodGet, path: "/v1/auth/verify-email?token=bogus", accept: "text/html"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "Verification failed")

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/auth/verify-email?token=bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid or expired token", decode(t, rec)["error"])

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/register",
		body: `{"email":"page@example.com","password":"password123"}`})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(t, call{method: http.MethodGet, accept: "text/html,application/xhtml+xml",
		path: "/v1/auth/verify-email?token=" + a.inbox.verifyToken("page@example.com")})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email verified")
}

func TestPermissionGatedRoutes(t *testing.T) {
	a := newApp(t)
	access, _ := a.signUp(t, "gus@example.com", "password123")

	rec := a.do(t, call{method: http.MethodGet, path: "/v1/products"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/products", bearer: access})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient permissions", decode(t, rec)["error"])

	require.NoError(t, a.access.SetRule(context.Background(), "user", "products", model.Permissions{CanRead: true}))

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/products", bearer: access})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["products"], 2)

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/orders", bearer: access})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccessAdministration(t *testing.T) {
	a := newApp(t)
	adminAccess, _ := a.signUp(t, "root@example.com", "password123")
	userAccess, _ := a.signUp(t, "joe@example.com", "password123")

	rec := a.do(t, call{method: http.MethodGet, path: "/v1/access-rules", bearer: userAccess})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := a.db.ExecContext(context.Background(), "UPDATE users SET is_superuser = 1 WHERE email = 'root@example.com'")
	require.NoError(t, err)

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/access-rules", bearer: adminAccess})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["rules"], 4, "admin holds one rule per seeded object")

	rec = a.do(t, call{method: http.MethodPut, path: "/v1/access-rules", bearer: adminAccess,
		body: `{"role":"user","object":"orders","can_read":true}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, call{method: http.MethodGet, path: "/v1/orders", bearer: userAccess})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, call{method: http.MethodPut, path: "/v1/access-rules", bearer: adminAccess,
		body: `{"role":"nobody","object":"orders","can_read":true}`})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var joeID uint64
	require.NoError(t, a.db.QueryRowContext(context.Background(),
		"SELECT id FROM users WHERE email = 'joe@example.com'").Scan(&joeID))
	rolesPath := "/v1/users/" + strconv.FormatUint(joeID, 10) + "/roles"

	rec = a.do(t, call{method: http.MethodPost, path: rolesPath, bearer: adminAccess, body: `{"role":"manager"}`})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = a.do(t, call{method: http.MethodGet, path: "/v1/users/me", bearer: userAccess})
	assert.Equal(t, []any{"manager", "user"}, decode(t, rec)["roles"])

	rec = a.do(t, call{method: http.MethodDelete, path: rolesPath + "/manager", bearer: adminAccess})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, call{method: http.MethodDelete, path: rolesPath + "/manager", bearer: adminAccess})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/users/abc/roles", bearer: adminAccess, body: `{"role":"manager"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileUpdateAndDeactivate(t *testing.T) {
	a := newApp(t)
	access, cookie := a.signUp(t, "pat@example.com", "password123")

	rec := a.do(t, call{method: http.MethodPut, path: "/v1/users/me", bearer: access, body: `{"last_name":"Smith"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Smith", decode(t, rec)["last_name"])

	rec = a.do(t, call{method: http.MethodDelete, path: "/v1/users/me", bearer: access})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/users/me", bearer: access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/refresh", cookie: cookie})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/login",
		body: `{"email":"pat@example.com","password":"password123"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordReset(t *testing.T) {
	a := newApp(t)
	a.signUp(t, "rita@example.com", "password123")

	rec := a.do(t, call{method: http.MethodPost, path: "/v1/users/password/forgot", body: `{"email":"nobody@example.com"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	generic := rec.Body.String()

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/users/password/forgot?email=rita@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generic, rec.Body.String(), "known and unknown emails look the same")
	tok := a.inbox.resetToken("rita@example.com")
	require.NotEmpty(t, tok)

	rec = a.do(t, call{method: http.MethodGet, path: "/v1/users/password/reset?token=" + tok})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="`+tok+`"`)

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/users/password/reset",
		body: `{"token":"` + tok + `","new_password":"short"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/users/password/reset",
		body: `{"token":"` + tok + `","new_password":"brand-new-pass"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/users/password/reset",
		body: `{"token":"` + tok + `","new_password":"brand-new-pass"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "reset tokens are single use")

	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/login",
		body: `{"email":"rita@example.com","password":"password123"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, call{method: http.MethodPost, path: "/v1/auth/login",
		body: `{"email":"rita@example.com","password":"brand-new-pass"}`})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	a := newApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/auth/login", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}
