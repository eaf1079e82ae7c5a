package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/task"
)

type handler struct {
	sessions SessionLister
	stats    StatsSource
	started  time.Time
	logger   *slog.Logger
}

// SessionsResponse is the body of GET /sessions.
type SessionsResponse struct {
	Count    int                `json:"count"`
	Sessions []task.SessionInfo `json:"sessions"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	UptimeSeconds  int64            `json:"uptime_seconds"`
	ActiveSessions int              `json:"active_sessions"`
	ActiveWorkers  int              `json:"active_workers"`
	QueuedItems    int              `json:"queued_items"`
	Events         map[string]int64 `json:"events"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("failed to write health check response", "error", err)
	}
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessions.Snapshot()
	RespondWithJSON(w, r, http.StatusOK, SessionsResponse{
		Count:    len(sessions),
		Sessions: sessions,
	})
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	user, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	for _, s := range h.sessions.Snapshot() {
		if s.UserID == user {
			RespondWithJSON(w, r, http.StatusOK, s)
			return
		}
	}
	RespondWithError(w, r, http.StatusNotFound, "Session not found")
}

func (h *handler) getStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Events:        make(map[string]int64),
	}

	sessions := h.sessions.Snapshot()
	resp.ActiveSessions = len(sessions)
	for _, s := range sessions {
		if s.WorkerRunning {
			resp.ActiveWorkers++
		}
		resp.QueuedItems += s.Queued
	}
	for t, n := range h.stats.Totals() {
		resp.Events[string(t)] = n
	}

	RespondWithJSON(w, r, http.StatusOK, resp)
}
