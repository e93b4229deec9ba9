package chathub_test

import (
	"context"

	"groupchat/backend/internal/models"
	"groupchat/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUserIfNotExists(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByName(ctx context.Context, name string) (*models.ChatGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatGroup), args.Error(1)
}

func (m *MockStorage) GetOrCreatePublicRoom(ctx context.Context) (*models.ChatGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatGroup), args.Error(1)
}

func (m *MockStorage) CreateGroupChat(ctx context.Context, displayName, admin string) (*models.ChatGroup, error) {
	args := m.Called(ctx, displayName, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatGroup), args.Error(1)
}

func (m *MockStorage) GetOrCreateDirectChat(ctx context.Context, userA, userB string) (*models.ChatGroup, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatGroup), args.Error(1)
}

func (m *MockStorage) DeleteRoom(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStorage) AddMember(ctx context.Context, room, username string) error {
	args := m.Called(ctx, room, username)
	return args.Error(0)
}

func (m *MockStorage) RemoveMember(ctx context.Context, room, username string) error {
	args := m.Called(ctx, room, username)
	return args.Error(0)
}

func (m *MockStorage) CreateMessage(ctx context.Context, room, author, body, fileName string) (*models.GroupMessage, storage.SaveOutcome, error) {
	args := m.Called(ctx, room, author, body, fileName)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.SaveOutcome), args.Error(2)
	}
	return args.Get(0).(*models.GroupMessage), args.Get(1).(storage.SaveOutcome), args.Error(2)
}

func (m *MockStorage) GetMessage(ctx context.Context, id uint) (*models.GroupMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupMessage), args.Error(1)
}

func (m *MockStorage) ListRecentMessages(ctx context.Context, room string, limit int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, room, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupMessage), args.Error(1)
}

func (m *MockStorage) MarkSeen(ctx context.Context, room, username string) error {
	args := m.Called(ctx, room, username)
	return args.Error(0)
}

func (m *MockStorage) MarkDelivered(ctx context.Context, id uint, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}
