//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-etl-service/internal/adapter/mysql"
	"github.com/couchcryptid/weather-etl-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-etl-service/internal/domain"
	"github.com/couchcryptid/weather-etl-service/internal/observability"
	"github.com/couchcryptid/weather-etl-service/internal/pipeline"
)

// TestLoader_RoundTrip appends a table and reads the six columns back.
func TestLoader_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	dbCfg, db := startMySQL(ctx, t)
	loader := mysql.NewLoader(dbCfg, discardLogger())

	ts := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	table := domain.ObservationTable{
		{City: "London", Timestamp: ts, Temperature: 15.2, Humidity: 80, Pressure: 1012, Weather: "cloudy"},
		{City: "Paris", Timestamp: ts, Temperature: 11, Humidity: 71, Pressure: 1009, Weather: "light rain"},
	}

	n, err := loader.LoadInto(ctx, table, "weather_roundtrip")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := db.QueryContext(ctx, "SELECT `city`, `timestamp`, `temperature`, `humidity`, `pressure`, `weather` FROM `weather_roundtrip` ORDER BY `id`")
	require.NoError(t, err)
	defer rows.Close()

	var got domain.ObservationTable
	for rows.Next() {
		var r domain.ObservationRecord
		require.NoError(t, rows.Scan(&r.City, &r.Timestamp, &r.Temperature, &r.Humidity, &r.Pressure, &r.Weather))
		r.Timestamp = r.Timestamp.UTC()
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, table, got)

	// A second load appends; nothing is deduplicated against existing rows.
	_, err = loader.LoadInto(ctx, table, "weather_roundtrip")
	require.NoError(t, err)
	assert.Equal(t, 4, countRows(ctx, t, db, "weather_roundtrip"))
}

// TestPipeline_EndToEnd runs extract-transform-load against a stub weather
// service and a real MySQL sink.
func TestPipeline_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	dbCfg, db := startMySQL(ctx, t)
	srv := weatherServer(t, map[string]string{"London": londonBody, "Paris": parisBody})

	metrics := observability.NewMetrics()
	client := openweather.NewClient("key", srv.URL, 5*time.Second, discardLogger())
	p := pipeline.New(
		pipeline.NewExtractor(client, discardLogger(), metrics),
		pipeline.NewTransformer(discardLogger()),
		mysql.NewLoader(dbCfg, discardLogger()),
		discardLogger(),
		metrics,
	)

	require.NoError(t, p.Run(ctx, domain.LocationList{"London", "Atlantis", "Paris", "London"}))
	assert.Equal(t, 2, countRows(ctx, t, db, dbCfg.Table))
}

// TestPipeline_SinkUnreachable leaves the existing table untouched when the
// configured sink cannot be reached.
func TestPipeline_SinkUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	dbCfg, db := startMySQL(ctx, t)
	_, err := mysql.NewLoader(dbCfg, discardLogger()).Load(ctx, domain.ObservationTable{})
	require.NoError(t, err)
	before := countRows(ctx, t, db, dbCfg.Table)

	badCfg := dbCfg
	badCfg.Password = "wrong-password"
	srv := weatherServer(t, map[string]string{"London": londonBody})

	metrics := observability.NewMetrics()
	p := pipeline.New(
		pipeline.NewExtractor(openweather.NewClient("key", srv.URL, 5*time.Second, discardLogger()), discardLogger(), metrics),
		pipeline.NewTransformer(discardLogger()),
		mysql.NewLoader(badCfg, discardLogger()),
		discardLogger(),
		metrics,
	)

	err = p.Run(ctx, domain.LocationList{"London"})
	require.Error(t, err)

	var sc *domain.SinkConnectionError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, before, countRows(ctx, t, db, dbCfg.Table))
}
