package storage

import (
	"context"
	"errors"

	"groupchat/backend/internal/models"

	"gorm.io/gorm"
)

// ErrRoomNotFound is returned when a room identifier resolves to nothing.
var ErrRoomNotFound = errors.New("chat room not found")

// ErrPrivateRoomImmutable is returned on membership changes to a direct
// chat. A private room holds exactly its two participants, forever.
var ErrPrivateRoomImmutable = errors.New("private room membership is immutable")

// SaveOutcome names the result of a message save attempt. A message with
// neither body nor file is not an error: it is silently skipped, and
// callers can branch on that explicitly.
type SaveOutcome int

const (
	// Saved means the message was persisted and carries an ID.
	Saved SaveOutcome = iota
	// Skipped means the message was empty and nothing was written.
	Skipped
)

// Storage is the persistence boundary of the messaging core. Rooms,
// messages, and membership live behind it; presence never does.
type Storage interface {
	SaveUserIfNotExists(ctx context.Context, username string) error

	GetRoomByName(ctx context.Context, name string) (*models.ChatGroup, error)
	GetOrCreatePublicRoom(ctx context.Context) (*models.ChatGroup, error)
	CreateGroupChat(ctx context.Context, displayName, admin string) (*models.ChatGroup, error)
	GetOrCreateDirectChat(ctx context.Context, userA, userB string) (*models.ChatGroup, error)
	DeleteRoom(ctx context.Context, name string) error
	AddMember(ctx context.Context, room, username string) error
	RemoveMember(ctx context.Context, room, username string) error

	CreateMessage(ctx context.Context, room, author, body, fileName string) (*models.GroupMessage, SaveOutcome, error)
	GetMessage(ctx context.Context, id uint) (*models.GroupMessage, error)
	ListRecentMessages(ctx context.Context, room string, limit int) ([]models.GroupMessage, error)
	MarkSeen(ctx context.Context, room, username string) error
	MarkDelivered(ctx context.Context, id uint, username string) error
}

// Service implements Storage on top of PostgreSQL via GORM.
type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}
