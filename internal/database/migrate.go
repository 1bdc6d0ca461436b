package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-voice/backend/internal/models"
)

// RunMigrations creates or updates the profile tables
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.UserProfile{}, &models.Allergen{}); err != nil {
		return fmt.Errorf("failed to migrate profile tables: %w", err)
	}
	return nil
}
