// Package database owns the gorm connection and the persistence operations
// consumed by the domain services.
// file: database/database.go
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"codeclash/config"
	"codeclash/logger"
	"codeclash/models"
)

// Connect opens the postgres connection described by cfg.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info.Println("database connected")
	return db, nil
}

// AutoMigrate creates or updates the schema for every entity the service
// reads and writes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Team{},
		&models.Match{},
		&models.Solution{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logger.Info.Println("database migrated")
	return nil
}
