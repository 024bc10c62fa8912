// Package handler provides HTTP handlers for the health surface and the
// read-only fixture listing. No handler mutates state; all writes happen
// through the sync engine.
package handler

import (
	"net/http"
	"time"

	"github.com/golexhq/golex-data/internal/api/respond"
	"github.com/golexhq/golex-data/internal/config"
	"github.com/golexhq/golex-data/internal/db"
	"github.com/golexhq/golex-data/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool  *db.Pool
	store *store.Store
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(pool *db.Pool, st *store.Store, cfg *config.Config) *Handler {
	return &Handler{pool: pool, store: st, cfg: cfg}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns service name, version, and backing services.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":     "GOLEX Data API",
		"version":  "1.0.0",
		"status":   "running",
		"docs":     "/docs",
		"database": "PostgreSQL",
		"storage":  "Cloudflare R2",
	})
}

// HealthCheck returns basic health status and configuration presence.
// @Summary Health check
// @Description Returns health status and which credential groups are configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"configured": h.cfg.Presence(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
