package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) FindSavedByUser(ctx context.Context, uid string) ([]*domain.RoomEntity, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RoomEntity), args.Error(1)
}

func (m *MockRoomRepository) WatchSaved(ctx context.Context, uid string) (<-chan struct{}, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan struct{}), args.Error(1)
}

func (m *MockRoomRepository) ToggleSaved(ctx context.Context, roomID, uid string) (*domain.ToggleResult, error) {
	args := m.Called(ctx, roomID, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToggleResult), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, uid string, profile domain.UserProfile) error {
	args := m.Called(ctx, uid, profile)
	return args.Error(0)
}

func (m *MockUserRepository) GetEmailByID(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, data)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendProfileUpdatedEmail(toEmail, fullName string) error {
	args := m.Called(toEmail, fullName)
	return args.Error(0)
}
