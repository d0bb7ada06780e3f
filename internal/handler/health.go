package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"database/sql"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports whether the service and its optional stores are
// reachable.  Either dependency may be nil when it is disabled.  A down
// dependency reports "degraded"; the check itself still answers 200.
type HealthHandler struct {
	rdb *redis.Client
	db  *sql.DB
}

func NewHealthHandler(rdb *redis.Client, db *sql.DB) *HealthHandler {
	return &HealthHandler{rdb: rdb, db: db}
}

// Health is used by load balancers and monitoring systems.  It always
// answers 200 with the state of each dependency.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
	defer cancel()

	status := echo.Map{"status": "ok", "redis": "disabled", "journal": "disabled"}
	if h.rdb != nil {
		status["redis"] = "up"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			status["status"] = "degraded"
		}
	}
	if h.db != nil {
		status["journal"] = "up"
		if err := h.db.PingContext(ctx); err != nil {
			status["journal"] = "down"
			status["status"] = "degraded"
		}
	}
	return c.JSON(http.StatusOK, status)
}
