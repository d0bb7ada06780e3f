package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking-wizard/internal/config"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
)

// cachedResponse is a stored 200 response.
type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ResponseCache keeps public GET responses in Redis.  The catalog and the
// movie routes get their own scope and TTL.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	log logger.Logger
}

func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log logger.Logger) *ResponseCache {
	return &ResponseCache{cfg: cfg, rdb: rdb, log: log}
}

// Catalog caches the fixed catalog lists.
func (rc *ResponseCache) Catalog() echo.MiddlewareFunc {
	return rc.middleware("catalog", rc.cfg.CatalogTTL)
}

// Movies caches the now-playing list and movie details.
func (rc *ResponseCache) Movies() echo.MiddlewareFunc {
	return rc.middleware("movies", rc.cfg.MovieTTL)
}

func (rc *ResponseCache) middleware(scope string, ttl time.Duration) echo.MiddlewareFunc {
	if !rc.cfg.Enabled || rc.rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := responseKey(rc.cfg.Prefix, scope, c.Request())

			if raw, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if err := json.Unmarshal(raw, &hit); err == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, hit.ContentType, hit.Body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}
			raw, err := json.Marshal(cachedResponse{
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			if err := rc.rdb.SetEx(context.WithoutCancel(ctx), key, raw, ttl).Err(); err != nil {
				rc.log.Warnf(ctx, "middleware.ResponseCache: store %s: %v", key, err)
			}
			return nil
		}
	}
}

// responseKey is prefix:scope:path?query with the query in canonical
// (sorted) form, so parameter order does not split the cache.
func responseKey(prefix, scope string, r *http.Request) string {
	key := prefix + ":" + scope + ":" + r.URL.Path
	if q := r.URL.Query(); len(q) > 0 {
		key += "?" + q.Encode()
	}
	return key
}

// bodyRecorder copies the response body while it is written.  A body
// larger than limit is not kept.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	limit    int
	buf      bytes.Buffer
	overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}
