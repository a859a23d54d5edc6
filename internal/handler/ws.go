package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/broadcast"
)

// WSHandler upgrades HTTP connections and subscribes them to broadcast
// topics.
type WSHandler struct {
	hub      *broadcast.WSHub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *broadcast.WSHub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Subscribe handles GET /ws?topics=drivers,ride.{id}
func (h *WSHandler) Subscribe(c *gin.Context) {
	raw := c.Query("topics")
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "topics query parameter is required"})
		return
	}
	topics := strings.Split(raw, ",")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	unregister := h.hub.Register(conn, topics)
	defer func() {
		unregister()
		conn.Close()
	}()

	// Drain the connection; clients only receive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
