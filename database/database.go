package database

import (
	"fmt"
	"log"

	"ff-tournament-system/config"
	"ff-tournament-system/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows a single writer; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("[DB] connected (%s) and migrated", cfg.Driver)
	return db, nil
}

// Migrate creates or updates every table the service uses and seeds the
// registration lock rows.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Player{},
		&models.Squad{},
		&models.SquadPlayer{},
		&models.RegistrationLock{},
		&models.Conductor{},
		&models.GameState{},
		&models.SquadGameState{},
		&models.SquadLeaderboard{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	lock := models.RegistrationLock{Name: models.SquadRegistrationLock}
	if err := db.Where(&lock).FirstOrCreate(&lock).Error; err != nil {
		return fmt.Errorf("failed to seed registration lock: %w", err)
	}
	return nil
}
