package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/magicolala/chess-arena/realtime"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers connect from the separate frontend origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and subscribes it to the requested room,
// e.g. "tournament_42" or "player_7".
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if room == "" {
		badRequestResponse(w, r, errMissingRoom)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, room)
	client.Start()
}
