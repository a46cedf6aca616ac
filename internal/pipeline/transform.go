package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-etl-service/internal/domain"
)

// WeatherTransformer implements Transformer using the domain normalization
// and de-duplication functions.
type WeatherTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a WeatherTransformer.
func NewTransformer(logger *slog.Logger) *WeatherTransformer {
	return &WeatherTransformer{logger: logger}
}

func (t *WeatherTransformer) Transform(_ context.Context, batch domain.ObservationBatch) (domain.ObservationTable, error) {
	table, err := domain.TransformBatch(batch)
	if err != nil {
		return nil, err
	}
	if dropped := len(batch) - len(table); dropped > 0 {
		t.logger.Debug("duplicate rows dropped", "count", dropped)
	}
	return table, nil
}
