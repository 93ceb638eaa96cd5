package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pappy/matching-engine/internal/config"
)

// NewDB opens the database selected by config and migrates the schema.
//
// TranslateError is required: the exactly-once invariants on decisions
// and matches lean on unique constraints, and the repositories detect
// losers via gorm.ErrDuplicatedKey on both MySQL and SQLite.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DB.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DB.DSN), gcfg)
	default:
		db, err = gorm.Open(mysql.Open(cfg.DB.DSN), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// Migrate ensures the schema is in sync with the models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Announcement{}, &Decision{}, &ViewRecord{}, &Match{})
}
