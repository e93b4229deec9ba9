package storage

import (
	"context"
	"errors"
	"log"

	"groupchat/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SaveUserIfNotExists creates the user row on first contact.
func (s *Service) SaveUserIfNotExists(ctx context.Context, username string) error {
	var user models.User

	defaults := models.User{Username: username}

	result := s.DB.WithContext(ctx).
		Where("username = ?", username).
		FirstOrCreate(&user, defaults)

	if result.Error != nil {
		log.Printf("ERROR: Failed to save user %s on first contact: %v", username, result.Error)
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("INFO: New user %s saved to database (ID: %s).", username, user.ID)
	}

	return nil
}

// GetRoomByName loads a room by its identifier.
func (s *Service) GetRoomByName(ctx context.Context, name string) (*models.ChatGroup, error) {
	var room models.ChatGroup

	err := s.DB.WithContext(ctx).Where("group_name = ?", name).First(&room).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", name, err)
		return nil, err
	}
	return &room, nil
}

// GetOrCreatePublicRoom resolves the well-known public room, creating it on
// first access.
func (s *Service) GetOrCreatePublicRoom(ctx context.Context) (*models.ChatGroup, error) {
	var room models.ChatGroup

	defaults := models.ChatGroup{
		GroupName:     models.PublicRoomName,
		GroupchatName: "Public Chat",
	}

	result := s.DB.WithContext(ctx).
		Where("group_name = ?", models.PublicRoomName).
		FirstOrCreate(&room, defaults)

	if result.Error != nil {
		log.Printf("ERROR: Failed to resolve public room: %v", result.Error)
		return nil, result.Error
	}
	return &room, nil
}

// CreateGroupChat creates a named group room. The creator becomes admin and
// the first member; the identifier is generated.
func (s *Service) CreateGroupChat(ctx context.Context, displayName, admin string) (*models.ChatGroup, error) {
	room := models.ChatGroup{
		GroupchatName: displayName,
		Admin:         admin,
		Members:       pq.StringArray{admin},
	}

	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		log.Printf("ERROR: Failed to create group chat %q: %v", displayName, err)
		return nil, err
	}
	return &room, nil
}

// GetOrCreateDirectChat finds the private room between two users, creating
// it if none exists. The membership set is fixed at creation.
func (s *Service) GetOrCreateDirectChat(ctx context.Context, userA, userB string) (*models.ChatGroup, error) {
	var room models.ChatGroup

	err := s.DB.WithContext(ctx).
		Where("is_private = ? AND members @> ?", true, pq.StringArray{userA, userB}).
		First(&room).Error

	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("ERROR: Failed to look up direct chat %s/%s: %v", userA, userB, err)
		return nil, err
	}

	room = models.ChatGroup{
		IsPrivate: true,
		Members:   pq.StringArray{userA, userB},
	}
	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		log.Printf("ERROR: Failed to create direct chat %s/%s: %v", userA, userB, err)
		return nil, err
	}
	return &room, nil
}

// DeleteRoom removes a room and its messages.
func (s *Service) DeleteRoom(ctx context.Context, name string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_name = ?", name).Delete(&models.GroupMessage{}).Error; err != nil {
			return err
		}

		result := tx.Where("group_name = ?", name).Delete(&models.ChatGroup{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
}

// AddMember adds a user to a group's membership set. Re-adding an existing
// member is a no-op.
func (s *Service) AddMember(ctx context.Context, room, username string) error {
	g, err := s.GetRoomByName(ctx, room)
	if err != nil {
		return err
	}
	if g.IsPrivate {
		return ErrPrivateRoomImmutable
	}

	return s.DB.WithContext(ctx).Model(&models.ChatGroup{}).
		Where("group_name = ? AND NOT (? = ANY(COALESCE(members, '{}')))", room, username).
		Update("members", gorm.Expr("array_append(COALESCE(members, '{}'), ?)", username)).Error
}

// RemoveMember removes a user from a group's membership set. Removing an
// absent member is a no-op.
func (s *Service) RemoveMember(ctx context.Context, room, username string) error {
	g, err := s.GetRoomByName(ctx, room)
	if err != nil {
		return err
	}
	if g.IsPrivate {
		return ErrPrivateRoomImmutable
	}

	return s.DB.WithContext(ctx).Model(&models.ChatGroup{}).
		Where("group_name = ?", room).
		Update("members", gorm.Expr("array_remove(COALESCE(members, '{}'), ?)", username)).Error
}
