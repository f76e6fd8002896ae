// Package services – RefreshService
//
// This file implements the refresh pipeline: fetch the two upstream datasets,
// join them by currency code, compute the estimated-GDP metric per record,
// bulk-upsert everything together with the global refresh timestamp in one
// transaction, and finally regenerate the summary artifact from the committed
// state.
//
// Failure semantics:
//   - Either upstream fetch failing aborts before any write; the error is a
//     *sources.UnavailableError naming the failed endpoint.
//   - Any fault inside the commit phase rolls the whole transaction back;
//     no country row or metadata change from that refresh becomes visible.
//   - A fault while rendering or persisting the artifact is wrapped in
//     ErrRenderFailed and reported, but the committed data stands; artifact
//     and dataset resynchronize on the next successful refresh.
//
// Observability: Refresh is OpenTelemetry-instrumented and increments
// Prometheus counters per outcome.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-countries-backend/internal/domain"
	"github.com/tbourn/go-countries-backend/internal/gdp"
	"github.com/tbourn/go-countries-backend/internal/render"
	"github.com/tbourn/go-countries-backend/internal/repo"
	"github.com/tbourn/go-countries-backend/internal/sources"
)

// topGDPCount is how many countries the summary artifact lists.
const topGDPCount = 5

var (
	refreshRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countries_refresh_total",
			Help: "Total number of refresh runs by outcome.",
		},
		[]string{"outcome"}, // success | source_unavailable | commit_failed | render_failed
	)

	refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "countries_refresh_duration_seconds",
			Help:    "End-to-end duration of refresh runs in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(refreshRuns, refreshDuration)
}

// DataSource is the upstream contract consumed by the refresh pipeline.
// *sources.Client implements it; tests substitute fakes.
type DataSource interface {
	FetchCountries(ctx context.Context) ([]sources.RawCountry, error)
	FetchRates(ctx context.Context) (map[string]float64, error)
}

// RefreshService coordinates the fetch → transform → commit → render pipeline.
//
// A mutex serializes concurrent Refresh calls: the dataset is refreshed
// all-or-nothing per run and interleaving two bulk upserts buys nothing, so
// the second caller simply waits and then runs its own full pipeline.
type RefreshService struct {
	DB           *gorm.DB
	Source       DataSource
	Estimator    *gdp.Estimator
	Renderer     render.Renderer
	ArtifactPath string

	mu sync.Mutex
}

// NewRefreshService wires the pipeline dependencies.
func NewRefreshService(db *gorm.DB, src DataSource, est *gdp.Estimator, r render.Renderer, artifactPath string) *RefreshService {
	return &RefreshService{
		DB:           db,
		Source:       src,
		Estimator:    est,
		Renderer:     r,
		ArtifactPath: artifactPath,
	}
}

// Refresh runs the full pipeline and returns the post-commit total country
// count. See the package comment for the failure semantics of each phase.
func (s *RefreshService) Refresh(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := otel.Tracer("services/RefreshService")
	ctx, span := tr.Start(ctx, "Refresh")
	defer span.End()

	start := time.Now()
	total, err := s.refresh(ctx, span)
	refreshDuration.Observe(time.Since(start).Seconds())
	refreshRuns.WithLabelValues(outcomeLabel(err)).Inc()
	return total, err
}

func (s *RefreshService) refresh(ctx context.Context, span trace.Span) (int64, error) {
	// Fetching: the two sources are independent, so fetch them in parallel.
	// Both must succeed; a failure of either aborts before any write.
	var (
		wg        sync.WaitGroup
		countries []sources.RawCountry
		rates     map[string]float64
		cErr      error
		rErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		countries, cErr = s.Source.FetchCountries(ctx)
	}()
	go func() {
		defer wg.Done()
		rates, rErr = s.Source.FetchRates(ctx)
	}()
	wg.Wait()
	if cErr != nil {
		return 0, cErr
	}
	if rErr != nil {
		return 0, rErr
	}
	span.SetAttributes(
		attribute.Int("refresh.fetched_countries", len(countries)),
		attribute.Int("refresh.fetched_rates", len(rates)),
	)

	// Transforming: join by currency code and compute the estimate.
	now := time.Now().UTC()
	records := s.transform(countries, rates, now)

	// Committing: bulk upsert plus metadata update, all-or-nothing.
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpsertCountries(ctx, tx, records); err != nil {
			return err
		}
		return repo.SetGlobalRefreshedAt(ctx, tx, now)
	})
	if err != nil {
		return 0, err
	}

	// Rendering: read back the committed state and replace the artifact.
	// Best-effort with respect to the commit above.
	total, err := repo.CountCountries(ctx, s.DB)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if err := s.renderSummary(ctx, total); err != nil {
		return 0, err
	}

	return total, nil
}

// transform maps raw upstream entries to Country rows, taking the first
// listed currency and applying the estimator. Upstream values are passed
// through unvalidated; the source is treated as authoritative for its own
// fields.
func (s *RefreshService) transform(raw []sources.RawCountry, rates map[string]float64, refreshedAt time.Time) []domain.Country {
	records := make([]domain.Country, 0, len(raw))
	for _, rc := range raw {
		code := ""
		if len(rc.Currencies) > 0 {
			code = rc.Currencies[0].Code
		}
		rate, estimate := s.Estimator.Estimate(rc.Population, code, rates)
		records = append(records, domain.Country{
			Name:            rc.Name,
			Capital:         rc.Capital,
			Region:          rc.Region,
			Population:      rc.Population,
			CurrencyCode:    code,
			ExchangeRate:    rate,
			EstimatedGDP:    estimate,
			FlagURL:         rc.Flag,
			LastRefreshedAt: refreshedAt,
		})
	}
	return records
}

// renderSummary reads post-commit aggregates, renders the summary image, and
// atomically replaces the artifact file. Every failure here wraps
// ErrRenderFailed so callers know the commit itself stands.
func (s *RefreshService) renderSummary(ctx context.Context, total int64) error {
	top, err := repo.TopCountriesByGDP(ctx, s.DB, topGDPCount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	refreshedAt, err := repo.GetGlobalRefreshedAt(ctx, s.DB)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	stats := render.Stats{
		TotalCountries:  total,
		LastRefreshedAt: refreshedAt,
		Top:             make([]render.TopCountry, 0, len(top)),
	}
	for _, t := range top {
		stats.Top = append(stats.Top, render.TopCountry{Name: t.Name, EstimatedGDP: t.EstimatedGDP})
	}

	img, err := s.Renderer.Render(stats)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if err := render.WriteArtifact(s.ArtifactPath, img); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return nil
}

// outcomeLabel maps a pipeline error to its Prometheus outcome label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case isUnavailable(err):
		return "source_unavailable"
	case isRenderFailure(err):
		return "render_failed"
	default:
		return "commit_failed"
	}
}
