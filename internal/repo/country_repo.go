// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Country
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a country is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Null ordering: SQLite treats NULL as smaller than every value, which would
// surface NULL-GDP rows first on ascending sorts and last on descending ones.
// Rather than relying on that engine default, the GDP sorts below pin the
// behavior with explicit NULLS clauses: gdp_desc places unknown GDP last,
// gdp_asc places it first. Tests cover both placements.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-countries-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service layer
// and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Sort identifies a listing order for ListCountries.
type Sort string

// Supported listing orders. NameAsc is the default.
const (
	SortNameAsc Sort = "name_asc"
	SortGDPDesc Sort = "gdp_desc"
	SortGDPAsc  Sort = "gdp_asc"
)

// Filter restricts ListCountries results. Zero-valued fields are no-ops;
// non-empty fields are combined conjunctively with equality matches.
type Filter struct {
	Region       string
	CurrencyCode string
}

// TopCountry is a projection of a country's name and estimated GDP, used by
// the refresh pipeline's post-commit read.
type TopCountry struct {
	Name         string   `json:"name"`
	EstimatedGDP *float64 `json:"estimated_gdp" gorm:"column:estimated_gdp"`
}

// UpsertCountries inserts the batch, overwriting every data field (including
// the refresh timestamp) on name conflict. Full replacement, no partial-field
// merge. The caller is expected to run this inside the same transaction as
// SetGlobalRefreshedAt so a refresh commits all-or-nothing.
func UpsertCountries(ctx context.Context, db *gorm.DB, countries []domain.Country) error {
	if len(countries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"capital", "region", "population", "currency_code",
			"exchange_rate", "estimated_gdp", "flag_url", "last_refreshed_at",
		}),
	}).CreateInBatches(countries, 100).Error
}

// ListCountries returns countries matching the filter in the requested order.
// Unknown Sort values fall back to name ascending.
func ListCountries(ctx context.Context, db *gorm.DB, f Filter, sort Sort) ([]domain.Country, error) {
	q := db.WithContext(ctx).Model(&domain.Country{})
	if f.Region != "" {
		q = q.Where("region = ?", f.Region)
	}
	if f.CurrencyCode != "" {
		q = q.Where("currency_code = ?", f.CurrencyCode)
	}

	switch sort {
	case SortGDPDesc:
		q = q.Order("estimated_gdp DESC NULLS LAST")
	case SortGDPAsc:
		q = q.Order("estimated_gdp ASC NULLS FIRST")
	default:
		q = q.Order("name ASC")
	}

	var out []domain.Country
	err := q.Find(&out).Error
	return out, err
}

// GetCountryByName fetches a single country by case-insensitive exact name
// match. Returns ErrNotFound when no row matches.
func GetCountryByName(ctx context.Context, db *gorm.DB, name string) (*domain.Country, error) {
	var c domain.Country
	err := db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCountryByName removes a country by case-insensitive name match and
// returns the number of rows deleted (0 means not found, not an error).
func DeleteCountryByName(ctx context.Context, db *gorm.DB, name string) (int64, error) {
	res := db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Delete(&domain.Country{})
	return res.RowsAffected, res.Error
}

// CountCountries returns the total number of country rows.
func CountCountries(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Country{}).Count(&total).Error
	return total, err
}

// TopCountriesByGDP returns up to n countries with non-null estimated GDP,
// highest first. Rows with unknown GDP are excluded entirely rather than
// sorted to an end.
func TopCountriesByGDP(ctx context.Context, db *gorm.DB, n int) ([]TopCountry, error) {
	var out []TopCountry
	err := db.WithContext(ctx).
		Model(&domain.Country{}).
		Select("name", "estimated_gdp").
		Where("estimated_gdp IS NOT NULL").
		Order("estimated_gdp DESC").
		Limit(n).
		Scan(&out).Error
	return out, err
}

// CountriesStats returns aggregate metadata for the countries table: the total
// number of rows and the maximum LastRefreshedAt among them. Used by the HTTP
// layer to build a weak ETag for listing responses. When the table is empty,
// maxRefreshedAt is nil.
func CountriesStats(ctx context.Context, db *gorm.DB) (count int64, maxRefreshedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Country{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest last_refreshed_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		LastRefreshedAt time.Time
	}
	if err = q.Select("last_refreshed_at").Order("last_refreshed_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.LastRefreshedAt, nil
}
