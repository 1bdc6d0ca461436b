package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
)

// MockRecipeClient is a mock implementation of the IRecipeClient interface
type MockRecipeClient struct {
	mock.Mock
}

func (m *MockRecipeClient) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockRecipeClient) Search(ctx context.Context, params spoonacular.SearchParams) ([]spoonacular.Recipe, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spoonacular.Recipe), args.Error(1)
}

func (m *MockRecipeClient) Instructions(ctx context.Context, recipeID string) ([]string, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecipeClient) Nutrition(ctx context.Context, recipeID string) (*spoonacular.Nutrition, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spoonacular.Nutrition), args.Error(1)
}
