package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/models"
)

// Migrate creates or updates the users, assignments and submissions tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{})
}
