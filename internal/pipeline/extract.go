package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-etl-service/internal/domain"
	"github.com/couchcryptid/weather-etl-service/internal/observability"
)

// Fetcher retrieves the current observation for one location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (domain.RawObservation, error)
}

// WeatherExtractor implements BatchExtractor by fetching each location in
// order, one request at a time.
type WeatherExtractor struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExtractor creates a WeatherExtractor.
func NewExtractor(f Fetcher, logger *slog.Logger, metrics *observability.Metrics) *WeatherExtractor {
	return &WeatherExtractor{fetcher: f, logger: logger, metrics: metrics}
}

// Extract fetches every location and returns the successful observations in
// input order. Failed locations are logged and skipped.
func (e *WeatherExtractor) Extract(ctx context.Context, locations domain.LocationList) domain.ObservationBatch {
	results := e.fetchAll(ctx, locations)

	batch := make(domain.ObservationBatch, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			e.logger.Warn("fetch failed, skipping location",
				"location", r.Location,
				"error", r.Err,
			)
			e.metrics.FetchFailures.Inc()
			continue
		}
		batch = append(batch, r.Observation)
	}
	e.metrics.ObservationsFetched.Add(float64(len(batch)))
	return batch
}

func (e *WeatherExtractor) fetchAll(ctx context.Context, locations domain.LocationList) []domain.FetchResult {
	results := make([]domain.FetchResult, 0, len(locations))
	for _, loc := range locations {
		start := clock.Now()
		obs, err := e.fetcher.Fetch(ctx, loc)
		e.metrics.FetchDuration.Observe(clock.Since(start).Seconds())

		results = append(results, domain.FetchResult{Location: loc, Observation: obs, Err: err})
	}
	return results
}
