package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/cache"
	"blog-backend/internal/config"
	"blog-backend/internal/engine"
	"blog-backend/internal/metadata"
	"blog-backend/internal/store"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	user := &metadata.UserContext{ID: 42, Username: "gopher", Email: "gopher@dev.com", Role: metadata.RoleUser}

	tok, err := GenerateAccessToken(user, testSecret)
	require.NoError(t, err)

	got, err := ParseAccessToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = ParseAccessToken(tok, "other-secret")
	assert.Error(t, err)
}

func TestParseAccessToken_RejectsUnsignedAndBadSubject(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "gopher"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken(raw, testSecret)
	assert.Error(t, err)

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-number"},
	})
	raw, err = bad.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseAccessToken(raw, testSecret)
	assert.ErrorContains(t, err, "invalid token subject")
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password@admin")
	require.NoError(t, err)
	assert.True(t, CheckPassword("password@admin", hash))
	assert.False(t, CheckPassword("password", hash))
}

type authEnv struct {
	app *fiber.App
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir(), Name: "blog"})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Bootstrap(ctx))

	reg, err := metadata.NewRegistry()
	require.NoError(t, err)
	v, err := engine.NewValidator(metadata.PayloadRules())
	require.NoError(t, err)
	h := engine.NewHandler(s, reg, cache.NoopStore{}, v)

	app := fiber.New(fiber.Config{ErrorHandler: engine.ErrorHandler})
	RegisterAuthRoutes(app, NewAuthHandler(s, v, testSecret))
	engine.RegisterRoutes(app, h, AuthMiddleware(testSecret), RequireAdmin())
	return &authEnv{app: app}
}

type response struct {
	Data   json.RawMessage  `json:"data"`
	Error  *engine.AppError `json:"error"`
	Status bool             `json:"status"`
}

func (e *authEnv) do(t *testing.T, method, path, token string, body any) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (e *authEnv) login(t *testing.T, email, password string) TokenPair {
	t.Helper()
	status, resp := e.do(t, "POST", "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, 200, status, "login %s: %+v", email, resp.Error)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(resp.Data, &pair))
	require.NotEmpty(t, pair.Token)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func TestLogin(t *testing.T) {
	env := newAuthEnv(t)

	status, resp := env.do(t, "POST", "/api/login", "", map[string]string{"email": "admin@internal.com", "password": "wrong"})
	assert.Equal(t, 401, status)
	assert.Equal(t, "email or password invalid", resp.Error.Message)

	status, resp = env.do(t, "POST", "/api/login", "", map[string]string{"email": "nobody@dev.com", "password": "x"})
	assert.Equal(t, 401, status)
	assert.Equal(t, "email or password invalid", resp.Error.Message)

	status, resp = env.do(t, "POST", "/api/login", "", map[string]string{"email": "admin@internal.com"})
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

	pair := env.login(t, "admin@internal.com", "password@admin")
	user, err := ParseAccessToken(pair.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin())
}

func TestAuthMiddleware(t *testing.T) {
	env := newAuthEnv(t)

	status, resp := env.do(t, "GET", "/api/post", "", nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, "Login please", resp.Error.Message)

	status, resp = env.do(t, "GET", "/api/post", "garbage", nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, "Invalid or expired token", resp.Error.Message)

	pair := env.login(t, "user-test@dev.com", "password-user")
	status, resp = env.do(t, "GET", "/api/post", pair.Token, nil)
	assert.Equal(t, 200, status)
	assert.True(t, resp.Status)
}

func TestRequireAdmin(t *testing.T) {
	env := newAuthEnv(t)
	category := map[string]string{"name": "golang", "description": "gophers"}

	user := env.login(t, "user-test@dev.com", "password-user")
	status, resp := env.do(t, "POST", "/api/category", user.Token, category)
	assert.Equal(t, 403, status)
	assert.Equal(t, "Path only for admin", resp.Error.Message)

	admin := env.login(t, "admin@internal.com", "password@admin")
	status, resp = env.do(t, "POST", "/api/category", admin.Token, category)
	assert.Equal(t, 201, status, "%+v", resp.Error)

	status, _ = env.do(t, "GET", "/api/category", user.Token, nil)
	assert.Equal(t, 200, status)
}

func TestRefreshAndLogout(t *testing.T) {
	env := newAuthEnv(t)
	pair := env.login(t, "user-test@dev.com", "password-user")

	status, resp := env.do(t, "POST", "/api/auth/refresh", "", map[string]string{"refreshToken": pair.RefreshToken})
	require.Equal(t, 200, status, "%+v", resp.Error)
	var next TokenPair
	require.NoError(t, json.Unmarshal(resp.Data, &next))
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// refresh tokens are single use
	status, resp = env.do(t, "POST", "/api/auth/refresh", "", map[string]string{"refreshToken": pair.RefreshToken})
	assert.Equal(t, 401, status)
	assert.Equal(t, "Invalid refresh token", resp.Error.Message)

	status, resp = env.do(t, "POST", "/api/auth/refresh", "", map[string]string{})
	assert.Equal(t, 401, status)
	assert.Equal(t, "Refresh token is required", resp.Error.Message)

	status, _ = env.do(t, "POST", "/api/auth/logout", "", map[string]string{"refreshToken": next.RefreshToken})
	assert.Equal(t, 200, status)

	status, _ = env.do(t, "POST", "/api/auth/refresh", "", map[string]string{"refreshToken": next.RefreshToken})
	assert.Equal(t, 401, status)
}
