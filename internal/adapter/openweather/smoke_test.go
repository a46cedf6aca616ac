//go:build openweather

package openweather

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/weather-etl-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real OpenWeather API and require OPENWEATHER_API_KEY.
// Run with: go test -tags=openweather ./internal/adapter/openweather/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("OPENWEATHER_API_KEY")
	if key == "" {
		t.Fatal("OPENWEATHER_API_KEY must be set to run smoke tests")
	}
	return NewClient(key, DefaultBaseURL, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_FetchLondon(t *testing.T) {
	c := smokeClient(t)

	obs, err := c.Fetch(context.Background(), "London")
	require.NoError(t, err)

	rec, err := domain.NormalizeObservation(0, obs)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.City)
	assert.Greater(t, rec.Pressure, 800.0)
	assert.NotEmpty(t, rec.Weather)
}

func TestSmoke_UnknownCity(t *testing.T) {
	c := smokeClient(t)

	_, err := c.Fetch(context.Background(), "Zzyzx-Not-A-Real-City-42")
	var ff *domain.FetchFailure
	require.ErrorAs(t, err, &ff)
	assert.Equal(t, 404, ff.StatusCode)
}
