package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-voice/backend/internal/models"
)

// MockProfileService is a mock implementation of the IProfileService interface
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Available() bool {
	return m.Called().Bool(0)
}

func (m *MockProfileService) GetOrCreate(ctx context.Context, userID string) *models.UserProfile {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.UserProfile)
}

func (m *MockProfileService) Update(ctx context.Context, userID string, diet *string, allergies []string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, diet, allergies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

// MockProfileStore is a mock implementation of the store.ProfileStore interface
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileStore) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileStore) MergeProfile(ctx context.Context, userID string, diet *string, allergies []string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, diet, allergies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}
