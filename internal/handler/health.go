package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// pinger is satisfied by *sql.DB.
type pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness of the database and, when configured,
// Redis. Redis being down degrades the service but does not fail it.
type HealthHandler struct {
	DB    pinger
	Redis *redis.Client
}

func NewHealthHandler(db pinger, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, Redis: rdb}
}

// Health GET /healthz
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := echo.Map{}

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			checks["database"] = "fail"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}
	switch {
	case h.Redis == nil:
		checks["redis"] = "disabled"
	case h.Redis.Ping(ctx).Err() != nil:
		checks["redis"] = "degraded"
	default:
		checks["redis"] = "ok"
	}

	label := "ok"
	if status != http.StatusOK {
		label = "unavailable"
	}
	return c.JSON(status, echo.Map{"status": label, "checks": checks})
}
