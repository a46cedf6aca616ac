package cli

import (
	"context"
	"fmt"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/weather-etl-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-etl-service/internal/adapter/mysql"
	"github.com/couchcryptid/weather-etl-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-etl-service/internal/config"
	"github.com/couchcryptid/weather-etl-service/internal/domain"
	"github.com/couchcryptid/weather-etl-service/internal/observability"
	"github.com/couchcryptid/weather-etl-service/internal/pipeline"
)

const pushTimeout = 10 * time.Second

// newLogger builds the process logger and installs it as the slog default.
var newLogger = sharedobs.NewLogger

// NewRootCmd returns the weather-etl command. It takes no flags or arguments;
// all settings come from the environment.
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather-etl",
		Short: "Fetch current weather for a list of cities and append it to MySQL",
		Long: `weather-etl performs one extract-transform-load pass: it fetches current
conditions for each configured city from OpenWeather, normalizes and
de-duplicates them, and appends the rows to a MySQL table.

Cities that cannot be fetched are skipped. Configuration is read from the
environment (and an optional .env file).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat).With("run_id", runID)
	metrics := observability.NewMetrics()

	client := openweather.NewClient(cfg.APIKey, cfg.BaseURL, cfg.RequestTimeout, logger)
	loader := mysql.NewLoader(cfg.DB, logger)

	var opts []pipeline.Option
	if cfg.KafkaEnabled {
		pub := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := pub.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		opts = append(opts, pipeline.WithPublisher(pub))
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(
		pipeline.NewExtractor(client, logger, metrics),
		pipeline.NewTransformer(logger),
		loader,
		logger,
		metrics,
		opts...,
	)

	logger.Info("run started", "locations", len(cfg.Locations), "sink", cfg.DB.Addr(), "table", cfg.DB.Table)
	runErr := p.Run(ctx, domain.LocationList(cfg.Locations))

	if cfg.PushgatewayURL != "" {
		// The run context may already be canceled; metrics should still go out.
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, cfg.MetricsJob); err != nil {
			logger.Error("metrics push failed", "error", err, "url", cfg.PushgatewayURL)
		}
		cancel()
	}

	if runErr != nil {
		// Logged once by the caller.
		return fmt.Errorf("run %s: %w", runID, runErr)
	}
	logger.Info("run complete")
	return nil
}
