package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-voice/backend/internal/models"
)

// GormStore keeps profiles in SQL. Allergies live in their own table with a
// unique (user_id, name) index, so a merge is a single transaction of
// upserts and insert-or-ignore rows.
type GormStore struct {
	db *gorm.DB
}

var _ ProfileStore = (*GormStore)(nil)

// NewGormStore creates a GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetProfile retrieves a profile with its allergies
func (s *GormStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.load(s.db.WithContext(ctx), userID)
}

// CreateProfile inserts the profile unless one already exists
func (s *GormStore) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.UserProfile{UserID: profile.UserID, Diet: profile.Diet}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("create profile %s: %w", profile.UserID, err)
		}
		return insertAllergens(tx, profile.UserID, profile.Allergies)
	})
}

// MergeProfile upserts the diet and adds the allergies in one transaction
func (s *GormStore) MergeProfile(ctx context.Context, userID string, diet *string, allergies []string) (*models.UserProfile, error) {
	var merged *models.UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.UserProfile{UserID: userID, Diet: diet}
		onConflict := clause.OnConflict{DoNothing: true}
		if diet != nil {
			onConflict = clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"diet", "updated_at"}),
			}
		}
		if err := tx.Omit(clause.Associations).Clauses(onConflict).Create(&row).Error; err != nil {
			return fmt.Errorf("merge profile %s: %w", userID, err)
		}
		if err := insertAllergens(tx, userID, allergies); err != nil {
			return err
		}

		var err error
		merged, err = s.load(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *GormStore) load(db *gorm.DB, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := db.Preload("AllergenRows").Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	profile.Allergies = make([]string, 0, len(profile.AllergenRows))
	for _, a := range profile.AllergenRows {
		profile.Allergies = append(profile.Allergies, a.Name)
	}
	profile.AllergenRows = nil
	profile.Normalize()
	return &profile, nil
}

func insertAllergens(tx *gorm.DB, userID string, allergies []string) error {
	if len(allergies) == 0 {
		return nil
	}
	rows := make([]models.Allergen, 0, len(allergies))
	for _, name := range allergies {
		rows = append(rows, models.Allergen{UserID: userID, Name: name})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("add allergies for %s: %w", userID, err)
	}
	return nil
}
