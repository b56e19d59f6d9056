package database

import (
	"fmt"

	"nala-backend/config"
	"nala-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and returns the handle. The caller owns the
// lifecycle (close the underlying *sql.DB on shutdown).
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// TranslateError turns pg unique violations into gorm.ErrDuplicatedKey,
	// which the issuance engine relies on to retry code minting.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates/updates the access-code table and the webhook audit
// log. Idempotent; safe to run on every startup.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.AccessCode{},
		&models.WebhookEvent{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}
