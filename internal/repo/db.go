// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and seeding of the singleton
// refresh-metadata row.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-countries-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
// When traced is true, the GORM OpenTelemetry plugin is installed so every
// query shows up as a span under the active trace.
func OpenSQLite(path string, traced bool) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if traced {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// AutoMigrate creates or updates the countries and refresh_metadata tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Country{},
		&domain.RefreshMetadata{},
	)
}

// SeedRefreshMetadata inserts the singleton refresh-metadata row (ID = 1) if
// it does not exist yet. The default timestamp marks the "never refreshed"
// state; only a successful refresh transaction updates it afterwards.
func SeedRefreshMetadata(db *gorm.DB) error {
	meta := domain.RefreshMetadata{
		ID:              domain.MetadataID,
		LastRefreshedAt: time.Now().UTC(),
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&meta).Error
}
