package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/CobrasOrg/auth-service/internal/config"
	"github.com/CobrasOrg/auth-service/internal/domain"
)

// Open connects to postgres. TranslateError is on so unique violations
// surface as gorm.ErrDuplicatedKey and the repository layer can map
// them without driver-specific inspection.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Migrate reconciles the schema with the registered models. The only
// table this service owns is users.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("migrate users table: %w", err)
	}
	return nil
}
