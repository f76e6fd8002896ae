// Country HTTP handlers.
//
// This file exposes the read-side REST endpoints:
//   - GET    /countries          (list, filterable, sortable, ETag support)
//   - GET    /countries/image    (rendered summary artifact)
//   - GET    /countries/:name    (fetch one, case-insensitive)
//   - DELETE /countries/:name    (delete one, case-insensitive)
//   - GET    /status             (aggregate status)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses (including conditional
// responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-countries-backend/internal/domain"
	"github.com/tbourn/go-countries-backend/internal/repo"
	"github.com/tbourn/go-countries-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// CountryService defines the read/delete operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CountryService interface {
	// List returns countries filtered by optional region and currency code.
	List(ctx context.Context, region, currencyCode, sort string) ([]domain.Country, error)
	// Get fetches one country by case-insensitive name.
	Get(ctx context.Context, name string) (*domain.Country, error)
	// Delete removes one country by case-insensitive name.
	Delete(ctx context.Context, name string) error
	// Status reports the total count and the global last-refreshed timestamp.
	Status(ctx context.Context) (int64, time.Time, error)
}

// RefreshService defines the refresh pipeline trigger.
type RefreshService interface {
	// Refresh runs the full pipeline and returns the post-commit total count.
	Refresh(ctx context.Context) (int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for countries, status, the summary
// artifact, and the refresh trigger. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	countrySvc CountryService
	refreshSvc RefreshService

	// artifactPath is where the summary image is served from.
	artifactPath string
}

// New constructs a Handlers instance bound to the given services.
func New(countrySvc CountryService, refreshSvc RefreshService, artifactPath string) *Handlers {
	return &Handlers{
		countrySvc:   countrySvc,
		refreshSvc:   refreshSvc,
		artifactPath: artifactPath,
	}
}

//
// DTOs
//

// StatusResponse is the payload of GET /status.
type StatusResponse struct {
	TotalCountries  int64     `json:"total_countries"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// DeleteResponse confirms a successful DELETE /countries/:name.
type DeleteResponse struct {
	Message string `json:"message"`
}

//
// Handlers
//

// ListCountries serves GET /countries with optional region / currency filters
// and a sort parameter (name_asc default, gdp_desc, gdp_asc). It supports a
// weak ETag derived from row count and newest refresh timestamp and may
// return 304.
func (h *Handlers) ListCountries(c *gin.Context) {
	ctx := c.Request.Context()
	region := strings.TrimSpace(c.Query("region"))
	currency := strings.TrimSpace(c.Query("currency"))
	sort := strings.TrimSpace(c.Query("sort"))

	// ETag pre-check (best effort); only for unfiltered default listings the
	// stats pair cannot misrepresent.
	var db *gorm.DB
	if svc, isConcrete := h.countrySvc.(*services.CountryService); isConcrete {
		db = svc.DB
	}
	if db != nil && region == "" && currency == "" {
		count, maxTS, err := repo.CountriesStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"countries:%s:%d:%d"`, sort, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.countrySvc.List(ctx, region, currency, sort)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Country{}
	}
	ok(c, http.StatusOK, items)
}

// GetSummaryImage serves GET /countries/image: the PNG rendered by the last
// successful refresh. Before the first successful refresh no artifact exists
// and the endpoint returns 404.
func (h *Handlers) GetSummaryImage(c *gin.Context) {
	if _, err := os.Stat(h.artifactPath); err != nil {
		fail(c, http.StatusNotFound, ErrCodeNoArtifact, "summary image not found")
		return
	}
	c.File(h.artifactPath)
}

// GetCountry serves GET /countries/:name with case-insensitive matching.
func (h *Handlers) GetCountry(c *gin.Context) {
	name := c.Param("name")
	if strings.TrimSpace(name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "country name required")
		return
	}

	country, err := h.countrySvc.Get(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrCountryNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "country not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, country)
}

// DeleteCountry serves DELETE /countries/:name with case-insensitive
// matching. Zero matching rows yields 404, not a server error.
func (h *Handlers) DeleteCountry(c *gin.Context) {
	name := c.Param("name")
	if strings.TrimSpace(name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "country name required")
		return
	}

	if err := h.countrySvc.Delete(c.Request.Context(), name); err != nil {
		if errors.Is(err, services.ErrCountryNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "country not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, DeleteResponse{Message: "Country deleted successfully"})
}

// GetStatus serves GET /status: total row count plus the global
// last-refreshed timestamp from the metadata singleton.
func (h *Handlers) GetStatus(c *gin.Context) {
	total, refreshedAt, err := h.countrySvc.Status(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, StatusResponse{
		TotalCountries:  total,
		LastRefreshedAt: refreshedAt,
	})
}
