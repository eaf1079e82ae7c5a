package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/trackbot/internal/events"
	"github.com/phrazzld/trackbot/internal/task"
)

// SessionLister provides point-in-time session views. *task.Registry
// satisfies it.
type SessionLister interface {
	Snapshot() []task.SessionInfo
}

// StatsSource provides event totals. *events.Counter satisfies it.
type StatsSource interface {
	Totals() map[events.Type]int64
}

// NewRouter builds the admin HTTP handler.
func NewRouter(sessions SessionLister, stats StatsSource, logger *slog.Logger) http.Handler {
	h := &handler{
		sessions: sessions,
		stats:    stats,
		started:  time.Now(),
		logger:   logger.With("component", "admin_api"),
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Get("/sessions", h.listSessions)
	r.Get("/sessions/{userID}", h.getSession)
	r.Get("/stats", h.getStats)

	return r
}
