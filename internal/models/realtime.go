package models

import (
	"encoding/json"
	"time"
)

// EventKind enumerates the events carried by the broadcast fabric between
// sessions. Every kind must be handled by the session dispatch switch.
type EventKind string

const (
	// EventChatMessage announces a new message by ID; subscribers re-fetch
	// the full message before forwarding it to their client.
	EventChatMessage EventKind = "chat.message"
	// EventOnlineCount carries an updated online-user count for the channel.
	EventOnlineCount EventKind = "online.count"
	// EventRoomClosed tells subscribers the room was destroyed and their
	// subscription is being released.
	EventRoomClosed EventKind = "room.closed"
)

// Event is the wire format published through the broadcast fabric.
type Event struct {
	Kind        EventKind `json:"kind"`
	MessageID   uint      `json:"message_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	OnlineCount int       `json:"online_count"`
}

// InboundKind classifies a client frame after parsing.
type InboundKind int

const (
	// InboundInvalid covers unparseable frames and frames matching no
	// known shape. They are logged and dropped.
	InboundInvalid InboundKind = iota
	// InboundSeen marks all unseen room messages as seen by the sender.
	InboundSeen
	// InboundMessage creates a new text message.
	InboundMessage
)

// InboundFrame is a client frame on the room channel: either
// {"type":"seen"} or {"body":"<text>"}.
type InboundFrame struct {
	Type string `json:"type"`
	Body string `json:"body"`
}

// ParseInbound decodes a raw client frame and classifies it.
func ParseInbound(raw []byte) (InboundFrame, InboundKind) {
	var f InboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return InboundFrame{}, InboundInvalid
	}
	switch {
	case f.Type == "seen":
		return f, InboundSeen
	case f.Body != "":
		return f, InboundMessage
	default:
		return f, InboundInvalid
	}
}

// OutboundType enumerates server-to-client frame types.
type OutboundType string

const (
	OutboundMessage     OutboundType = "message"
	OutboundOnlineCount OutboundType = "online_count"
	OutboundPong        OutboundType = "pong"
)

// OutboundFrame is a server-to-client frame on either channel.
type OutboundFrame struct {
	Type        OutboundType `json:"type"`
	MessageID   uint         `json:"message_id,omitempty"`
	Username    string       `json:"username,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Message     string       `json:"message,omitempty"`
	OnlineCount *int         `json:"online_count,omitempty"`
}

// NewMessageFrame renders a stored message as a client frame.
func NewMessageFrame(msg *GroupMessage) OutboundFrame {
	return OutboundFrame{
		Type:      OutboundMessage,
		MessageID: msg.ID,
		Username:  msg.Author,
		Timestamp: msg.CreatedAt.Format(time.RFC3339),
		Message:   msg.DisplayText(),
	}
}

// NewOnlineCountFrame carries an updated online-user count.
func NewOnlineCountFrame(count int) OutboundFrame {
	return OutboundFrame{Type: OutboundOnlineCount, OnlineCount: &count}
}

// NewPongFrame answers a presence-channel keepalive.
func NewPongFrame() OutboundFrame {
	return OutboundFrame{Type: OutboundPong}
}
