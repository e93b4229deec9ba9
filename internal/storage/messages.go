package storage

import (
	"context"
	"errors"
	"log"

	"groupchat/backend/internal/models"

	"gorm.io/gorm"
)

// CreateMessage persists a new message in a room. A message with neither
// body nor file writes nothing and reports Skipped.
func (s *Service) CreateMessage(ctx context.Context, room, author, body, fileName string) (*models.GroupMessage, SaveOutcome, error) {
	if body == "" && fileName == "" {
		return nil, Skipped, nil
	}

	msg := models.GroupMessage{
		GroupName: room,
		Author:    author,
		Body:      body,
		FileName:  fileName,
	}

	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", room, err)
		return nil, Saved, err
	}

	return &msg, Saved, nil
}

// GetMessage returns a message by its ID, or nil without error when it no
// longer exists.
func (s *Service) GetMessage(ctx context.Context, id uint) (*models.GroupMessage, error) {
	var msg models.GroupMessage

	err := s.DB.WithContext(ctx).First(&msg, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListRecentMessages returns up to limit messages with content from a room,
// most recent first.
func (s *Service) ListRecentMessages(ctx context.Context, room string, limit int) ([]models.GroupMessage, error) {
	var msgs []models.GroupMessage

	err := s.DB.WithContext(ctx).
		Where("group_name = ?", room).
		Where("body <> '' OR file_name <> ''").
		Order("created_at desc").
		Limit(limit).
		Find(&msgs).Error

	if err != nil {
		log.Printf("ERROR: Failed to list messages for room %s: %v", room, err)
		return nil, err
	}
	return msgs, nil
}

// MarkSeen appends the user to the seen-by set of every room message not
// yet seen by them. Calling it again changes nothing.
func (s *Service) MarkSeen(ctx context.Context, room, username string) error {
	return s.DB.WithContext(ctx).Model(&models.GroupMessage{}).
		Where("group_name = ? AND NOT (? = ANY(COALESCE(seen_by, '{}')))", room, username).
		Update("seen_by", gorm.Expr("array_append(COALESCE(seen_by, '{}'), ?)", username)).Error
}

// MarkDelivered appends the user to a message's delivered-to set once.
func (s *Service) MarkDelivered(ctx context.Context, id uint, username string) error {
	return s.DB.WithContext(ctx).Model(&models.GroupMessage{}).
		Where("id = ? AND NOT (? = ANY(COALESCE(delivered_to, '{}')))", id, username).
		Update("delivered_to", gorm.Expr("array_append(COALESCE(delivered_to, '{}'), ?)", username)).Error
}
