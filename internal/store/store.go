// Package store persists user profiles. Implementations merge updates
// atomically inside the backing store; callers never read-modify-write.
package store

import (
	"context"

	"github.com/pageza/alchemorsel-voice/backend/internal/models"
)

// ProfileStore is a key-value store of user profiles
type ProfileStore interface {
	// GetProfile returns nil, nil when no profile exists for userID.
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)

	// CreateProfile stores a new profile. A profile that already exists is
	// left untouched and is not an error.
	CreateProfile(ctx context.Context, profile *models.UserProfile) error

	// MergeProfile overwrites the diet when diet is non-nil and adds
	// allergies to the stored set, creating the profile if needed. It
	// returns the profile as stored after the update.
	MergeProfile(ctx context.Context, userID string, diet *string, allergies []string) (*models.UserProfile, error)
}
