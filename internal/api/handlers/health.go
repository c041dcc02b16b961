package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

type check struct {
	name     string
	required bool // gates /ready
	ping     func(context.Context) error
}

type HealthHandler struct {
	checks []check
}

// NewHealthHandler checks the database and, when rdb is set, the Redis
// instance behind the mail queue and rate limiter.
func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{}
	h.checks = append(h.checks, check{name: "database", required: true, ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}})
	if rdb != nil {
		h.checks = append(h.checks, check{name: "redis", ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return h
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Services: make(map[string]string, len(h.checks))}
	for _, c := range h.checks {
		if err := c.ping(ctx); err != nil {
			resp.Services[c.name] = "unhealthy"
			resp.Status = "unhealthy"
			continue
		}
		resp.Services[c.name] = "healthy"
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// Ready fails only on required checks; questions can be served while Redis is down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	for _, c := range h.checks {
		if !c.required {
			continue
		}
		if err := c.ping(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
