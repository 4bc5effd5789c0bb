package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/events"
	"go.uber.org/zap"
)

const (
	eventGateSaved   = "gate-saved"
	defaultHeartbeat = 25 * time.Second
)

type EventsHandler struct {
	hub       *events.Hub
	logger    *zap.Logger
	heartbeat time.Duration
}

func NewEventsHandler(hub *events.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger, heartbeat: defaultHeartbeat}
}

// Stream godoc
// @Summary Server-sent events for saved gates
// @Description Emits a gate-saved event whenever one of the caller's gates is saved in any session
// @Tags Events
// @Produce text/event-stream
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 200 {object} appstate.GateSavedEvent
// @Security BearerAuth
// @Router /events [get]
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())
	if ownerID == "" {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	// the stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ch, unsubscribe := h.hub.Subscribe(ownerID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("failed to encode event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventGateSaved, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
