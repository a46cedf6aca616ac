// Command genfixtures captures live OpenWeather responses as test fixtures.
// Each body is checked with the same normalization the pipeline uses before it
// is written, and a summary of the normalized rows is printed.
//
// Usage:
//
//	OPENWEATHER_API_KEY=... go run ./cmd/genfixtures \
//	  -locations "London,Paris" \
//	  -out internal/pipeline/testdata
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-etl-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-etl-service/internal/config"
	"github.com/couchcryptid/weather-etl-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	locations := flag.String("locations", "", "comma-separated city names (default WEATHER_LOCATIONS)")
	outDir := flag.String("out", "", "directory to write <city>.json fixtures into")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	_ = godotenv.Load()
	cfg, err := loadConfig(*locations)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	client := openweather.NewClient(cfg.APIKey, cfg.BaseURL, *timeout,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	table, err := capture(context.Background(), client, cfg.Locations, *outDir)
	if err != nil {
		return err
	}
	printStats(table)
	return nil
}

// loadConfig reads the same environment as the weather-etl command. A
// non-empty locations flag replaces WEATHER_LOCATIONS.
func loadConfig(locations string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if locations != "" {
		cfg.Locations = sharedcfg.ParseBrokers(locations)
	}
	return cfg, nil
}

// capture fetches each location and writes the bodies that normalize cleanly.
func capture(ctx context.Context, client *openweather.Client, locations []string, outDir string) (domain.ObservationTable, error) {
	var table domain.ObservationTable
	for _, loc := range locations {
		obs, err := client.Fetch(ctx, loc)
		if err != nil {
			log.Printf("skip %s: %v", loc, err)
			continue
		}
		rec, err := domain.NormalizeObservation(len(table), obs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", loc, err)
		}

		path := filepath.Join(outDir, fixtureName(loc))
		if err := writeIndented(path, obs.Payload); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("wrote %s", path)
		table = append(table, rec)
	}
	return table, nil
}

// fixtureName turns "New York" into "new_york.json".
func fixtureName(location string) string {
	return strings.ReplaceAll(strings.ToLower(location), " ", "_") + ".json"
}

func writeIndented(path string, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func printStats(table domain.ObservationTable) {
	fmt.Printf("\n%-16s %-20s %8s %8s %8s  %s\n", "CITY", "TIMESTAMP", "TEMP", "HUM", "PRES", "WEATHER")
	for _, r := range table {
		fmt.Printf("%-16s %-20s %8.2f %8.0f %8.0f  %s\n",
			r.City, r.Timestamp.Format(time.RFC3339), r.Temperature, r.Humidity, r.Pressure, r.Weather)
	}
	fmt.Printf("\n%d fixtures, %d unique rows\n", len(table), len(domain.Dedupe(table)))
}
