package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-platform/pkg/config"
	"tenant-platform/pkg/jwtutil"
)

type fakeSessionChecker struct {
	live map[string]bool
}

func (f *fakeSessionChecker) IsSessionLive(ctx context.Context, sessionKey string) (bool, error) {
	return f.live[sessionKey], nil
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	mw := AuthMiddleware(&fakeSessionChecker{live: map[string]bool{}})
	rec := invoke(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	mw := AuthMiddleware(&fakeSessionChecker{live: map[string]bool{}})
	rec := invoke(t, mw, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsClosedSession(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	token, err := jwtutil.GenerateToken("alice", 1, "key-1", false)
	require.NoError(t, err)

	// Valid token, but the session behind it was closed by a logout.
	mw := AuthMiddleware(&fakeSessionChecker{live: map[string]bool{}})
	rec := invoke(t, mw, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsLiveSession(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	token, err := jwtutil.GenerateToken("alice", 1, "key-1", true)
	require.NoError(t, err)

	mw := AuthMiddleware(&fakeSessionChecker{live: map[string]bool{"key-1": true}})
	rec := invoke(t, mw, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()

	run := func(isAdmin interface{}) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if isAdmin != nil {
			c.Set("is_admin", isAdmin)
		}
		handler := RequireAdmin(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, run(nil))
	assert.Equal(t, http.StatusForbidden, run(false))
	assert.Equal(t, http.StatusOK, run(true))
}
