package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dayjournal/backend/internal/database"
	"github.com/dayjournal/backend/internal/services"
)

// dbChecker is the part of database.Source the probes look at.
type dbChecker interface {
	Ping(ctx context.Context) error
	Mode() database.Mode
	Stats() sql.DBStats
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbChecker
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a HealthHandler. rdb may be nil.
func NewHealthHandler(db dbChecker, rdb *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Open    *int   `json:"open_connections,omitempty"`
	InUse   *int   `json:"in_use,omitempty"`
}

// Ready is the readiness probe. Pings DB: 200 if OK, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		services.SendJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	services.SendJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check with database latency, connection mode
// and Redis status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	stats := h.db.Stats()
	dbStatus := CompStatus{
		Status: "ok",
		Mode:   string(h.db.Mode()),
		Open:   &stats.OpenConnections,
		InUse:  &stats.InUse,
	}
	if err != nil {
		dbStatus.Status = "down"
		overallStatus = "down"
	} else {
		dbStatus.Latency = latency.String()
	}
	components["database"] = dbStatus

	// Redis only backs rate limiting, which fails open.
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = CompStatus{Status: "down"}
		} else {
			components["redis"] = CompStatus{Status: "ok"}
		}
	}

	status := http.StatusOK
	if overallStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	services.SendJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
