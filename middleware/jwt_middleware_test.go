package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	access, refresh, err := GenerateJWT("64f1a0", "user@example.com", "user")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	parsed, err := jwt.ParseWithClaims(access, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(*JwtCustomClaims)
	assert.Equal(t, "64f1a0", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user", claims.UserType)
	assert.InDelta(t, time.Now().Add(AccessTokenTTL).Unix(), claims.ExpiresAt, 5)
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, _, err := GenerateJWT("id", "a@b.com", "user")
	assert.Error(t, err)
}

func TestJWTMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	access, _, err := GenerateJWT("64f1a0", "user@example.com", "user")
	require.NoError(t, err)

	e := echo.New()
	handler := JWTMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("userId").(string))
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: access})
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "64f1a0", rec.Body.String())
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestBlacklistToken(t *testing.T) {
	assert.False(t, IsTokenBlacklisted("some-token"))

	BlacklistToken("some-token", time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted("some-token"))
}

func TestNewAuthCookie(t *testing.T) {
	t.Setenv("ENV", "development")

	expires := time.Now().Add(AccessTokenTTL)
	cookie := NewAuthCookie("tok", expires)

	assert.Equal(t, AuthCookieName, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
}

func TestRequireUserType(t *testing.T) {
	e := echo.New()

	handler := RequireUserType("admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	t.Run("admin allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("userType", "admin")

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("userType", "user")

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
