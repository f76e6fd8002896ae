// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file covers the singleton refresh-metadata row.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-countries-backend/internal/domain"
)

// SetGlobalRefreshedAt updates the singleton metadata row's timestamp. The
// refresh pipeline calls this inside the same transaction as UpsertCountries;
// a rollback of that transaction reverts this write too. Returns ErrNotFound
// if the singleton row was never seeded.
func SetGlobalRefreshedAt(ctx context.Context, db *gorm.DB, t time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.RefreshMetadata{}).
		Where("id = ?", domain.MetadataID).
		Update("last_refreshed_at", t.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGlobalRefreshedAt reads the singleton metadata row's timestamp.
func GetGlobalRefreshedAt(ctx context.Context, db *gorm.DB) (time.Time, error) {
	var meta domain.RefreshMetadata
	err := db.WithContext(ctx).First(&meta, "id = ?", domain.MetadataID).Error
	if err != nil {
		return time.Time{}, err
	}
	return meta.LastRefreshedAt, nil
}
