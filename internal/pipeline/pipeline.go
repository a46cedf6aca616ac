package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-etl-service/internal/domain"
	"github.com/couchcryptid/weather-etl-service/internal/observability"
)

// BatchExtractor fetches observations for a list of locations. It never fails
// as a whole; unreachable locations are omitted from the batch.
type BatchExtractor interface {
	Extract(ctx context.Context, locations domain.LocationList) domain.ObservationBatch
}

// Transformer normalizes a batch into a de-duplicated table.
type Transformer interface {
	Transform(ctx context.Context, batch domain.ObservationBatch) (domain.ObservationTable, error)
}

// Loader appends a table to the sink and returns the number of rows written.
type Loader interface {
	Load(ctx context.Context, table domain.ObservationTable) (int, error)
}

// Publisher forwards loaded rows downstream.
type Publisher interface {
	Publish(ctx context.Context, table domain.ObservationTable) (int, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher publishes each loaded table after the load stage.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// Pipeline runs a single extract-transform-load pass.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      Loader
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one pass over locations. Fetch failures are absorbed by the
// extractor; transform and load failures are returned.
func (p *Pipeline) Run(ctx context.Context, locations domain.LocationList) error {
	p.metrics.LocationsRequested.Set(float64(len(locations)))

	p.logger.Info("extracting observations", "locations", len(locations))
	start := clock.Now()
	batch := p.extractor.Extract(ctx, locations)
	p.observeStage("extract", start)
	p.logger.Info("extraction complete",
		"fetched", len(batch),
		"skipped", len(locations)-len(batch),
	)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run canceled: %w", err)
	}

	p.logger.Info("transforming observations", "observations", len(batch))
	start = clock.Now()
	table, err := p.transformer.Transform(ctx, batch)
	p.observeStage("transform", start)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	p.metrics.RowsTransformed.Set(float64(len(table)))
	p.logger.Info("transformation complete", "rows", len(table))

	p.logger.Info("loading rows", "rows", len(table))
	start = clock.Now()
	loaded, err := p.loader.Load(ctx, table)
	p.observeStage("load", start)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	p.metrics.RowsLoaded.Add(float64(loaded))
	p.metrics.LastSuccess.Set(float64(clock.Now().Unix()))
	p.logger.Info("load complete", "rows", loaded)

	if p.publisher != nil {
		p.publish(ctx, table)
	}
	return nil
}

// publish is best effort: the sink is the system of record.
func (p *Pipeline) publish(ctx context.Context, table domain.ObservationTable) {
	start := clock.Now()
	n, err := p.publisher.Publish(ctx, table)
	p.observeStage("publish", start)
	if err != nil {
		p.metrics.PublishFailures.Inc()
		p.logger.Warn("publish failed", "rows", len(table), "error", err)
		return
	}
	p.metrics.RowsPublished.Add(float64(n))
	p.logger.Info("publish complete", "messages", n)
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Set(clock.Since(start).Seconds())
}
