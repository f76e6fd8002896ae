// Refresh HTTP handler.
//
// POST /countries/refresh triggers the full refresh pipeline. The status code
// distinguishes the failure phases the caller can act on: 503 when either
// upstream source was unavailable (retryable, the offending source is named),
// 500 for anything else. A render failure after a successful commit is a 500
// even though the country data was persisted; the next successful refresh
// resynchronizes the artifact.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-countries-backend/internal/services"
	"github.com/tbourn/go-countries-backend/internal/sources"
)

// RefreshResponse is the payload of a successful POST /countries/refresh.
type RefreshResponse struct {
	Message        string `json:"message"`
	TotalCountries int64  `json:"total_countries"`
}

// RefreshCountries serves POST /countries/refresh.
func (h *Handlers) RefreshCountries(c *gin.Context) {
	total, err := h.refreshSvc.Refresh(c.Request.Context())
	if err != nil {
		var unavailable *sources.UnavailableError
		switch {
		case errors.As(err, &unavailable):
			fail(c, http.StatusServiceUnavailable, ErrCodeSourceUnavailable,
				"could not fetch data from "+unavailable.Source)
		case errors.Is(err, services.ErrRenderFailed):
			fail(c, http.StatusInternalServerError, ErrCodeRefreshFailed, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		}
		return
	}

	ok(c, http.StatusOK, RefreshResponse{
		Message:        "Countries data refreshed successfully",
		TotalCountries: total,
	})
}
