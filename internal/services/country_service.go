// Package services – CountryService
//
// This file implements CountryService, the application-level component behind
// the plain read/list/delete/status endpoints. It normalizes query inputs,
// maps repository errors to service-level sentinels, and keeps handlers free
// of persistence concerns.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-countries-backend/internal/domain"
	"github.com/tbourn/go-countries-backend/internal/repo"
)

// CountryService provides read and delete operations over the country table
// plus the aggregate status view.
type CountryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewCountryService constructs a CountryService over the given handle.
func NewCountryService(db *gorm.DB) *CountryService {
	return &CountryService{DB: db}
}

// List returns countries filtered by optional region and currency code, in
// the requested order. Unknown sort values fall back to name ascending, the
// same way the filters treat empty strings as no-ops.
func (s *CountryService) List(ctx context.Context, region, currencyCode, sort string) ([]domain.Country, error) {
	return repo.ListCountries(ctx, s.DB,
		repo.Filter{Region: region, CurrencyCode: currencyCode},
		repo.Sort(sort),
	)
}

// Get fetches one country by case-insensitive name. Returns
// ErrCountryNotFound when absent.
func (s *CountryService) Get(ctx context.Context, name string) (*domain.Country, error) {
	c, err := repo.GetCountryByName(ctx, s.DB, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete removes one country by case-insensitive name. Returns
// ErrCountryNotFound when no row matched; zero matches are not a server
// error.
func (s *CountryService) Delete(ctx context.Context, name string) error {
	n, err := repo.DeleteCountryByName(ctx, s.DB, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCountryNotFound
	}
	return nil
}

// Status reports the total row count and the global last-refreshed timestamp.
func (s *CountryService) Status(ctx context.Context) (total int64, lastRefreshedAt time.Time, err error) {
	total, err = repo.CountCountries(ctx, s.DB)
	if err != nil {
		return 0, time.Time{}, err
	}
	lastRefreshedAt, err = repo.GetGlobalRefreshedAt(ctx, s.DB)
	if err != nil {
		return 0, time.Time{}, err
	}
	return total, lastRefreshedAt, nil
}
