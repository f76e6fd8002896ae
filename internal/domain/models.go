// Package domain defines the persistence models for country records and the
// global refresh metadata. These types are mapped with GORM and form the core
// data layer of the countries backend.
package domain

import "time"

// MetadataID is the fixed primary key of the RefreshMetadata singleton.
const MetadataID uint = 1

// Country represents one row per distinct country name. Name is the natural
// key: storage preserves case, lookups are case-insensitive (see repo).
// Records are created and updated only by the refresh pipeline, and deleted
// only via an explicit per-name delete request.
//
// Fields:
//   - ID: auto-increment surrogate key.
//   - Name: unique country name (natural key).
//   - Capital / Region / FlagURL: optional descriptive attributes.
//   - Population: passed through from the upstream source unvalidated.
//   - CurrencyCode: first currency listed by the upstream source, if any.
//   - ExchangeRate: rate against USD; nil when the reported currency code was
//     not present in the rate table at refresh time.
//   - EstimatedGDP: synthetic display metric (population × multiplier / rate);
//     nil exactly when a currency code was present but had no rate, zero when
//     the country reported no currency at all.
//   - LastRefreshedAt: timestamp of the refresh that last touched this row.
type Country struct {
	ID              uint      `json:"id"                       gorm:"primaryKey"`
	Name            string    `json:"name"                     gorm:"type:varchar(255);not null;uniqueIndex:ux_countries_name"`
	Capital         string    `json:"capital,omitempty"        gorm:"type:varchar(255)"`
	Region          string    `json:"region,omitempty"         gorm:"type:varchar(100);index:idx_countries_region"`
	Population      int64     `json:"population"               gorm:"not null"`
	CurrencyCode    string    `json:"currency_code,omitempty"  gorm:"type:varchar(10);index:idx_countries_currency"`
	ExchangeRate    *float64  `json:"exchange_rate"`
	EstimatedGDP    *float64  `json:"estimated_gdp"            gorm:"column:estimated_gdp"`
	FlagURL         string    `json:"flag_url,omitempty"       gorm:"type:text"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// TableName returns the database table name for Country.
func (Country) TableName() string { return "countries" }

// RefreshMetadata is the singleton row (ID = 1) tracking when the whole
// dataset was last successfully refreshed. It is seeded once at startup and
// updated only inside a successful refresh transaction, independently of the
// per-country timestamps.
type RefreshMetadata struct {
	ID              uint      `json:"id"                gorm:"primaryKey"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// TableName returns the database table name for RefreshMetadata.
func (RefreshMetadata) TableName() string { return "refresh_metadata" }
