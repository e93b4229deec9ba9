package handler

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// roomNamePattern matches the opaque room tokens accepted on the wire.
var roomNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ServeChatWS upgrades a /ws/chatroom/{room_id}/ request and hands the
// connection to the gateway. Authentication happens after the upgrade so
// failures can be reported with a close code.
func (h *Handler) ServeChatWS(c *gin.Context) {
	roomName := c.Param("room_id")
	if !roomNamePattern.MatchString(roomName) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room identifier"})
		return
	}

	token := bearerToken(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	h.Gateway.ServeChat(conn, token, roomName)
}

// ServeOnlineStatusWS upgrades a /ws/online-status/ request onto the global
// presence channel.
func (h *Handler) ServeOnlineStatusWS(c *gin.Context) {
	token := bearerToken(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	h.Gateway.ServePresence(conn, token)
}
