package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking-wizard/internal/config"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
)

// takeToken refills the bucket continuously at ARGV[2] tokens per
// millisecond and takes one token.  It returns {allowed, remaining, wait_ms}.
var takeToken = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now
tokens = math.min(capacity, tokens + math.max(0, now - ts) * rate)
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
else
	wait = math.ceil((1 - tokens) / rate)
end
redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", KEYS[1], ARGV[4])
local allowed = 0
if wait == 0 then allowed = 1 end
return {allowed, math.floor(tokens), wait}
`)

const (
	bucketSelect  = "select"
	bucketConfirm = "confirm"
)

// RateLimit limits wizard traffic per customer.  Confirm draws from its own
// bucket.  Redis errors fail open; the limiter never blocks a booking.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, log logger.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := strconv.FormatInt(cfg.TTL().Milliseconds(), 10)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			name, bucket := bucketFor(cfg, c)
			key := rateKey(cfg.Prefix, name, c)
			ctx := c.Request().Context()

			res, err := takeToken.Run(ctx, rdb, []string{key},
				bucket.Capacity,
				refillRate(bucket),
				time.Now().UnixMilli(),
				ttl,
			).Int64Slice()
			if err != nil || len(res) != 3 {
				log.Warnf(ctx, "middleware.RateLimit: key %s: %v", key, err)
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(bucket.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 1 {
				return next(c)
			}
			secs := retryAfter(res[2])
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "too many requests, please slow down",
				"retry_after": secs,
			})
		}
	}
}

// bucketFor picks the confirm bucket for the confirm route and the select
// bucket for everything else.
func bucketFor(cfg config.RateLimitConfig, c echo.Context) (string, config.Bucket) {
	if strings.HasSuffix(c.Path(), "/confirm") {
		return bucketConfirm, cfg.Confirm
	}
	return bucketSelect, cfg.Select
}

// rateKey names the caller: the signed-in customer's phone, else the
// wizard session in the path, else the client address.
func rateKey(prefix, bucket string, c echo.Context) string {
	caller := "ip:" + c.RealIP()
	if phone := customerPhone(c); phone != "" {
		caller = "customer:" + phone
	} else if id := c.Param("id"); id != "" {
		caller = "session:" + id
	}
	return prefix + ":" + bucket + ":" + caller
}

// refillRate is the bucket's refill speed in tokens per millisecond.
func refillRate(b config.Bucket) string {
	ms := b.Period.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatFloat(float64(b.Capacity)/float64(ms), 'g', -1, 64)
}

// retryAfter rounds a wait in milliseconds up to whole seconds.
func retryAfter(waitMs int64) int {
	if waitMs <= 0 {
		return 0
	}
	return int((waitMs + 999) / 1000)
}
