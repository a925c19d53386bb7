package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-auth-api/internal/model"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version     string
	environment string
	apiPrefix   string
	db          pinger
	started     time.Time
	now         func() time.Time
}

func NewHealthHandler(version string, environment string, apiPrefix string, db pinger) *HealthHandler {
	return &HealthHandler{
		version:     version,
		environment: environment,
		apiPrefix:   apiPrefix,
		db:          db,
		started:     time.Now(),
		now:         time.Now,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.status("healthy"))
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.status("alive"))
}

// Ready reports not_ready with 503 when the database cannot be reached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, h.status("not_ready"))
			return
		}
	}
	writeJSON(w, http.StatusOK, h.status("ready"))
}

func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.ServiceInfo{
		Message:     "Welcome to the auth API",
		Version:     h.version,
		Environment: h.environment,
		DocsURL:     "/docs",
		HealthCheck: h.apiPrefix + "/health",
	})
}

func (h *HealthHandler) status(state string) model.HealthStatus {
	now := h.now().UTC()
	return model.HealthStatus{
		Status:      state,
		Timestamp:   now,
		Version:     h.version,
		Environment: h.environment,
		Uptime:      now.Sub(h.started).Seconds(),
	}
}
