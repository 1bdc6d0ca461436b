package service

import (
	"context"

	"github.com/pageza/alchemorsel-voice/backend/internal/models"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
)

// IProfileService defines the profile operations the intent handlers need
type IProfileService interface {
	Available() bool
	GetOrCreate(ctx context.Context, userID string) *models.UserProfile
	Update(ctx context.Context, userID string, diet *string, allergies []string) (*models.UserProfile, error)
}

// IRecipeClient defines the recipe API operations the intent handlers need
type IRecipeClient interface {
	Configured() bool
	Search(ctx context.Context, params spoonacular.SearchParams) ([]spoonacular.Recipe, error)
	Instructions(ctx context.Context, recipeID string) ([]string, error)
	Nutrition(ctx context.Context, recipeID string) (*spoonacular.Nutrition, error)
}

var (
	_ IProfileService = (*ProfileService)(nil)
	_ IRecipeClient   = (*spoonacular.Client)(nil)
)
