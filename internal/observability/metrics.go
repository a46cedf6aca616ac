package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "weather_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for one ETL run.
// They live in their own registry, which is pushed to a Pushgateway at the end
// of the run instead of being scraped.
type Metrics struct {
	Registry *prometheus.Registry

	LocationsRequested  prometheus.Gauge
	ObservationsFetched prometheus.Counter
	FetchFailures       prometheus.Counter
	FetchDuration       prometheus.Histogram
	RowsTransformed     prometheus.Gauge
	RowsLoaded          prometheus.Counter
	RowsPublished       prometheus.Counter
	PublishFailures     prometheus.Counter

	StageDuration *prometheus.GaugeVec // labels: stage={extract,transform,load,publish}
	LastSuccess   prometheus.Gauge
}

// NewMetrics creates all pipeline metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LocationsRequested: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locations_requested",
			Help:      "Number of locations requested in the last run.",
		}),
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_fetched_total",
			Help:      "Observations successfully fetched from the weather service.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Locations skipped because the fetch failed.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Weather service request duration per location.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RowsTransformed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_transformed",
			Help:      "Rows in the normalized table after de-duplication.",
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows appended to the sink table.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_published_total",
			Help:      "Rows published to Kafka.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Failed publish attempts.",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage in the last run.",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that loaded successfully.",
		}),
	}

	m.Registry.MustRegister(
		m.LocationsRequested,
		m.ObservationsFetched,
		m.FetchFailures,
		m.FetchDuration,
		m.RowsTransformed,
		m.RowsLoaded,
		m.RowsPublished,
		m.PublishFailures,
		m.StageDuration,
		m.LastSuccess,
	)

	return m
}

// Push sends the registry to a Prometheus Pushgateway under job, replacing
// any metrics previously pushed for that job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
