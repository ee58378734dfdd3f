package repository

import (
	"haccp-flow/internal/domain"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Document{},
		&domain.Task{},
		&domain.AuditEntry{},
	)
}
