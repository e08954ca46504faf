package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(e *echo.Echo, handler echo.HandlerFunc, ip, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	_ = handler(c)
	return rec
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter()
	handler := limiter.RateLimit()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Login allows a burst of 5, the sixth request in the same instant trips
	// the limiter and blocks the IP.
	for i := 0; i < 5; i++ {
		rec := doRequest(e, handler, "10.0.0.1", "/api/auth/login")
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := doRequest(e, handler, "10.0.0.1", "/api/auth/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Once blocked, even the first request of a new burst is refused.
	rec = doRequest(e, handler, "10.0.0.1", "/api/auth/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitIsPerIP(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter()
	handler := limiter.RateLimit()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 6; i++ {
		doRequest(e, handler, "10.0.0.2", "/api/auth/login")
	}

	// A different IP is unaffected by the first one being blocked.
	rec := doRequest(e, handler, "10.0.0.3", "/api/auth/login")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitDefaultAllowsNormalTraffic(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter()
	handler := limiter.RateLimit()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 20; i++ {
		rec := doRequest(e, handler, "10.0.0.4", "/api/cars")
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}
}
