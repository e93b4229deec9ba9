package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PublicRoomName is the well-known room every authenticated user may join.
// It is created lazily on first access.
const PublicRoomName = "public-chat"

// ChatGroup represents a named chat room. A non-private group has a display
// name and an admin; a private group is a direct chat between exactly two
// members and is immutable after creation.
type ChatGroup struct {
	// GroupName is the unique, stable identifier of the room. Generated
	// as a UUID when not supplied by the creator.
	GroupName string `gorm:"primaryKey" json:"group_name"`
	// GroupchatName is the human-readable display name. Empty for DMs.
	GroupchatName string `gorm:"type:text" json:"groupchat_name,omitempty"`
	// Admin is the username of the room's administrator. Empty for DMs
	// and for the public room.
	Admin string `gorm:"type:text" json:"admin,omitempty"`
	// Members is the persistent membership set. For private rooms this is
	// exactly the two participants.
	Members pq.StringArray `gorm:"type:text[]" json:"members"`
	// IsPrivate marks a two-member direct chat.
	IsPrivate bool `json:"is_private"`
	// CreatedAt is the timestamp when the room was created.
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that assigns a generated identifier when the
// room was created without an explicit one.
func (g *ChatGroup) BeforeCreate(tx *gorm.DB) (err error) {
	if g.GroupName == "" {
		g.GroupName = uuid.New().String()
	}
	return
}

// HasMember reports whether the given username is in the membership set.
func (g *ChatGroup) HasMember(username string) bool {
	for _, m := range g.Members {
		if m == username {
			return true
		}
	}
	return false
}

// OtherMember returns the other participant of a private room. Empty string
// when the room is not private or the user is not a member.
func (g *ChatGroup) OtherMember(username string) string {
	if !g.IsPrivate {
		return ""
	}
	for _, m := range g.Members {
		if m != username {
			return m
		}
	}
	return ""
}
