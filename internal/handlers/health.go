package handlers

import (
	"context"
	"net/http"
	"time"

	"feedback-backend/internal/database"

	log "github.com/sirupsen/logrus"
)

const readyTimeout = 2 * time.Second

type HealthHandler struct {
	storage database.Pinger
}

func NewHealthHandler(storage database.Pinger) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// --- GET /healthz ---

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// --- GET /readyz ---

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		log.WithError(err).Warn("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
