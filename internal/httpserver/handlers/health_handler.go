package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type healthBody struct {
	Status    string     `json:"status"`
	Database  string     `json:"database"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Uptime    float64    `json:"uptime,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Health reports process uptime and store reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	now, err := h.store.Ping(r.Context())
	if err != nil {
		h.log.Errorw("health check failed", "requestId", middleware.GetReqID(r.Context()), "error", err)
		respondJSON(w, http.StatusInternalServerError, healthBody{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, healthBody{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: &now,
		Uptime:    time.Since(h.started).Seconds(),
	})
}
