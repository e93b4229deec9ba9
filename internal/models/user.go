package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account known to the chat backend. Identity management
// proper lives outside this service; this row is the minimal projection the
// messaging core needs (a stable username to key presence and authorship).
type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
}

// BeforeCreate is a GORM hook that generates a new UUID for the user if the
// ID has not been set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
