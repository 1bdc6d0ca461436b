package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/internal/metrics"
	"github.com/pageza/alchemorsel-voice/backend/internal/models"
	"github.com/pageza/alchemorsel-voice/backend/internal/store"
)

var (
	ErrStoreUnavailable = errors.New("profile store is not configured")
	ErrNothingToUpdate  = errors.New("no profile fields to update")
)

// ProfileService handles user profile operations. Reads are lenient and
// fall back to an empty profile; writes report every fault.
type ProfileService struct {
	store   store.ProfileStore
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewProfileService creates a new ProfileService. A nil store is allowed
// and makes every write fail with ErrStoreUnavailable.
func NewProfileService(s store.ProfileStore, logger *zap.Logger, m *metrics.Metrics) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{store: s, logger: logger, metrics: m}
}

// Available reports whether a profile store is configured
func (s *ProfileService) Available() bool {
	return s.store != nil
}

// GetOrCreate returns the user's profile, creating an empty one on first
// access. Storage faults are logged and yield an empty default profile.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID string) *models.UserProfile {
	if s.store == nil || userID == "" {
		return models.NewUserProfile(userID)
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		s.fault("get", userID, err)
		return models.NewUserProfile(userID)
	}
	if profile != nil {
		return profile
	}

	s.logger.Info("creating profile", zap.String("user_id", userID))
	profile = models.NewUserProfile(userID)
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		s.fault("create", userID, err)
	}
	return profile
}

// Update overwrites the diet when diet is non-nil and adds allergies to the
// stored set. ErrNothingToUpdate is returned without touching the store
// when neither is given.
func (s *ProfileService) Update(ctx context.Context, userID string, diet *string, allergies []string) (*models.UserProfile, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	if diet != nil {
		trimmed := strings.TrimSpace(*diet)
		if trimmed == "" {
			diet = nil
		} else {
			diet = &trimmed
		}
	}
	allergies = models.NormalizeAllergies(allergies)
	if diet == nil && len(allergies) == 0 {
		return nil, ErrNothingToUpdate
	}

	profile, err := s.store.MergeProfile(ctx, userID, diet, allergies)
	if err != nil {
		s.fault("merge", userID, err)
		return nil, fmt.Errorf("update profile %s: %w", userID, err)
	}
	return profile, nil
}

func (s *ProfileService) fault(op, userID string, err error) {
	s.metrics.ProfileStoreError(op)
	s.logger.Error("profile store error",
		zap.String("operation", op),
		zap.String("user_id", userID),
		zap.Error(err))
}
