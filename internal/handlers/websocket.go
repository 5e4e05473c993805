package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/middleware"
	"github.com/askar/teamboard/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the frontend origin once it is fixed
	},
}

// WebSocketHandler binds upgraded connections to hub rooms.
type WebSocketHandler struct {
	hub *realtime.Hub
	log *logger.Logger
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		log: logger.NewLogger("websocket-handler"),
	}
}

// HandleBoard serves the per-room board sync channel. The room id is a
// string like "team:3" or "user:7".
func (h *WebSocketHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	room := mux.Vars(r)["room"]
	if room == "" {
		http.Error(w, "Room is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade failed", "error", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, room, userID, h.log)
	client.Start()
}
