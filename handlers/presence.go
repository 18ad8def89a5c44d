package handlers

import (
	"net/http"

	"github.com/amu-telemed/telemed-backend/models"
	"github.com/amu-telemed/telemed-backend/realtime"
	"github.com/amu-telemed/telemed-backend/utils"
)

// StatusHandler exposes an operational view of the realtime core.
type StatusHandler struct {
	hub *realtime.Hub
}

func NewStatusHandler(hub *realtime.Hub) *StatusHandler {
	return &StatusHandler{hub: hub}
}

func (h *StatusHandler) Presence(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(h.hub.Stats()))
}
