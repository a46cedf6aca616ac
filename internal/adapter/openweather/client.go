package openweather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-etl-service/internal/domain"
)

// DefaultBaseURL is the OpenWeather current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// maxErrorBody bounds how much of a non-200 body ends up in an error message.
const maxErrorBody = 512

// Client fetches current weather from the OpenWeather API, one city per call.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client. A zero timeout leaves the
// http.Client default in place.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Fetch requests current weather for location in metric units. Every failure
// is returned as a *domain.FetchFailure.
func (c *Client) Fetch(ctx context.Context, location string) (domain.RawObservation, error) {
	params := url.Values{
		"q":     {location},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.RawObservation{}, &domain.FetchFailure{Location: location, Err: fmt.Errorf("create request: %w", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawObservation{}, &domain.FetchFailure{Location: location, Err: fmt.Errorf("weather request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.RawObservation{}, &domain.FetchFailure{
			Location:   location,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("openweather API error: %s", body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RawObservation{}, &domain.FetchFailure{Location: location, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	obs, err := domain.ParseObservation(body)
	if err != nil {
		return domain.RawObservation{}, &domain.FetchFailure{Location: location, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("weather fetched",
		"location", location,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)
	return obs, nil
}
