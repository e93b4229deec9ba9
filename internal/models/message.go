package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GroupMessage represents a saved chat message in the PostgreSQL database.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt
// fields, which serve as the message ID and timestamps.
type GroupMessage struct {
	gorm.Model

	// GroupName is the identifier of the room the message belongs to.
	GroupName string `gorm:"type:text;not null;index:idx_group_msg" json:"group_name"`
	// Author is the username of the user who sent the message.
	Author string `gorm:"type:text;not null;index:idx_group_msg" json:"author"`
	// Body is the text content. May be empty for file-only messages.
	Body string `gorm:"type:text" json:"body,omitempty"`
	// FileName is an opaque reference to an attached file. May be empty.
	FileName string `gorm:"type:text" json:"file_name,omitempty"`

	// DeliveredTo is the append-only set of usernames the message was
	// delivered to.
	DeliveredTo pq.StringArray `gorm:"type:text[]" json:"delivered_to"`
	// SeenBy is the append-only set of usernames that have seen the message.
	SeenBy pq.StringArray `gorm:"type:text[]" json:"seen_by"`
}

// HasContent reports whether the message carries either body text or a file.
// A message with neither is invalid and must never reach clients.
func (m *GroupMessage) HasContent() bool {
	return m.Body != "" || m.FileName != ""
}

// DisplayText is the text shown to clients: the body when present,
// otherwise a placeholder naming the attached file.
func (m *GroupMessage) DisplayText() string {
	if m.Body != "" {
		return m.Body
	}
	if m.FileName != "" {
		return "Shared a file: " + m.FileName
	}
	return ""
}

// SeenByUser reports whether the given username is in the seen-by set.
func (m *GroupMessage) SeenByUser(username string) bool {
	for _, u := range m.SeenBy {
		if u == username {
			return true
		}
	}
	return false
}

// DeliveredToUser reports whether the given username is in the delivered-to set.
func (m *GroupMessage) DeliveredToUser(username string) bool {
	for _, u := range m.DeliveredTo {
		if u == username {
			return true
		}
	}
	return false
}
