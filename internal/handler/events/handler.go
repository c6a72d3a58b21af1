package events

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/hypercar-hub/backend/internal/service/events"
	"github.com/zhouzirui/hypercar-hub/backend/pkg/utils"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// Handler streams car change events over WebSocket and Server-Sent Events.
type Handler struct {
	hub          *events.Hub
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// New creates an events handler reading from hub.
func New(hub *events.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingInterval: defaultPingInterval,
	}
}

// RegisterRoutes mounts the change feed endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cars/events/ws", h.handleWebSocket)
	r.Get("/cars/events/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, cancel := h.hub.Subscribe()
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if err := utils.SendSSEComment(w, flusher, "ready"); err != nil {
		return
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ctx := r.Context()
	h.logger.Debug("sse subscriber connected", zap.String("remote", r.RemoteAddr))
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("sse subscriber gone",
				zap.String("remote", r.RemoteAddr),
				zap.Uint64("hub_dropped", h.hub.Dropped()),
			)
			return
		case evt, ok := <-sub:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(evt.Type), evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "ping"); err != nil {
				return
			}
		}
	}
}
