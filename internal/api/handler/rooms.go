package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"groupchat/backend/internal/config"
	"groupchat/backend/internal/models"
	"groupchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type postMessageRequest struct {
	Body     string `json:"body"`
	FileName string `json:"file_name"`
}

// CreateGroupChat creates a named group room; the caller becomes its admin.
func (h *Handler) CreateGroupChat(c *gin.Context) {
	username := c.GetString("username")

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	room, err := h.Storage.CreateGroupChat(c.Request.Context(), req.Name, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// GetOrCreateDirectChat resolves the private room between the caller and
// another user, creating it on first contact.
func (h *Handler) GetOrCreateDirectChat(c *gin.Context) {
	username := c.GetString("username")
	other := c.Param("username")

	if other == username {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open a chat with yourself"})
		return
	}

	room, err := h.Storage.GetOrCreateDirectChat(c.Request.Context(), username, other)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open direct chat"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListMessages returns a room's recent messages, most recent first.
func (h *Handler) ListMessages(c *gin.Context) {
	roomName := c.Param("room_id")

	limit := config.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if n > config.MaxHistoryLimit {
			n = config.MaxHistoryLimit
		}
		limit = n
	}

	if _, err := h.Storage.GetRoomByName(c.Request.Context(), roomName); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	msgs, err := h.Storage.ListRecentMessages(c.Request.Context(), roomName, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage creates a message over REST. This is the path file references
// arrive on; an empty message is acknowledged with 204 and never stored.
func (h *Handler) PostMessage(c *gin.Context) {
	username := c.GetString("username")
	roomName := c.Param("room_id")

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message payload"})
		return
	}

	if _, err := h.Storage.GetRoomByName(c.Request.Context(), roomName); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	msg, outcome, err := h.Storage.CreateMessage(c.Request.Context(), roomName, username, req.Body, req.FileName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}
	if outcome == storage.Skipped {
		c.Status(http.StatusNoContent)
		return
	}

	ev := models.Event{
		Kind:      models.EventChatMessage,
		MessageID: msg.ID,
		Username:  username,
	}
	if err := h.Gateway.Fabric.Publish(c.Request.Context(), roomName, ev); err != nil {
		log.Printf("ERROR: Publish to room %s failed: %v", roomName, err)
	}

	c.JSON(http.StatusCreated, msg)
}

// JoinRoom adds the caller to a group's membership set.
func (h *Handler) JoinRoom(c *gin.Context) {
	username := c.GetString("username")
	roomName := c.Param("room_id")

	err := h.Storage.AddMember(c.Request.Context(), roomName, username)
	switch {
	case errors.Is(err, storage.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
	case errors.Is(err, storage.ErrPrivateRoomImmutable):
		c.JSON(http.StatusForbidden, gin.H{"error": "Direct chats cannot be joined"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
	default:
		c.Status(http.StatusNoContent)
	}
}

// LeaveRoom removes the caller from a group's membership set.
func (h *Handler) LeaveRoom(c *gin.Context) {
	username := c.GetString("username")
	roomName := c.Param("room_id")

	err := h.Storage.RemoveMember(c.Request.Context(), roomName, username)
	switch {
	case errors.Is(err, storage.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
	case errors.Is(err, storage.ErrPrivateRoomImmutable):
		c.JSON(http.StatusForbidden, gin.H{"error": "Direct chats cannot be left"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave room"})
	default:
		c.Status(http.StatusNoContent)
	}
}

// DeleteRoom destroys a group. Only the room admin may do this; destruction
// releases every live subscription on the room's channel.
func (h *Handler) DeleteRoom(c *gin.Context) {
	username := c.GetString("username")
	roomName := c.Param("room_id")

	room, err := h.Storage.GetRoomByName(c.Request.Context(), roomName)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	if room.Admin == "" || room.Admin != username {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the room admin can delete it"})
		return
	}

	if err := h.Gateway.DestroyRoom(c.Request.Context(), roomName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RoomOnline reports who is online in a room right now.
func (h *Handler) RoomOnline(c *gin.Context) {
	roomName := c.Param("room_id")

	c.JSON(http.StatusOK, gin.H{
		"online_count": h.Gateway.Presence.RoomOnlineCount(roomName),
		"users":        h.Gateway.Presence.RoomOnlineUsers(roomName),
	})
}
