package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-wizard/internal/config"
	"github.com/iliyamo/cinema-booking-wizard/internal/identity"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
)

func newCtx(e *echo.Echo, method, target, path string) echo.Context {
	c := e.NewContext(httptest.NewRequest(method, target, nil), httptest.NewRecorder())
	c.SetPath(path)
	return c
}

func TestRateKeyNamesTheCaller(t *testing.T) {
	e := echo.New()

	c := newCtx(e, http.MethodPost, "/v1/wizards", "/v1/wizards")
	c.Request().RemoteAddr = "10.0.0.7:5000"
	assert.Equal(t, "rl:select:ip:10.0.0.7", rateKey("rl", bucketSelect, c))

	c = newCtx(e, http.MethodPost, "/v1/wizards/s1/advance", "/v1/wizards/:id/advance")
	c.SetParamNames("id")
	c.SetParamValues("s1")
	assert.Equal(t, "rl:select:session:s1", rateKey("rl", bucketSelect, c))

	tok, err := identity.Issue(secret, "0911111111", time.Hour)
	require.NoError(t, err)
	id, err := identity.Parse(secret, tok)
	require.NoError(t, err)
	req := c.Request()
	c.SetRequest(req.WithContext(identity.NewContext(req.Context(), id)))
	assert.Equal(t, "rl:select:customer:0911111111", rateKey("rl", bucketSelect, c))
}

func TestConfirmUsesItsOwnBucket(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{
		Select:  config.Bucket{Capacity: 60, Period: time.Minute},
		Confirm: config.Bucket{Capacity: 3, Period: time.Minute},
	}

	name, b := bucketFor(cfg, newCtx(e, http.MethodPost, "/v1/wizards/s1/confirm", "/v1/wizards/:id/confirm"))
	assert.Equal(t, bucketConfirm, name)
	assert.Equal(t, 3, b.Capacity)

	name, b = bucketFor(cfg, newCtx(e, http.MethodPut, "/v1/wizards/s1/theater", "/v1/wizards/:id/theater"))
	assert.Equal(t, bucketSelect, name)
	assert.Equal(t, 60, b.Capacity)
}

func TestRefillAndRetryAfter(t *testing.T) {
	assert.Equal(t, "0.001", refillRate(config.Bucket{Capacity: 60, Period: time.Minute}))
	assert.Equal(t, "3", refillRate(config.Bucket{Capacity: 3, Period: 0}))

	assert.Equal(t, 0, retryAfter(0))
	assert.Equal(t, 1, retryAfter(1))
	assert.Equal(t, 1, retryAfter(1000))
	assert.Equal(t, 2, retryAfter(1001))
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.POST("/", func(c echo.Context) error { return c.NoContent(http.StatusAccepted) },
		RateLimit(config.RateLimitConfig{Enabled: false}, nil, logger.NewNop()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
