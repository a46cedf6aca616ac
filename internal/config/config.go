package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/weather-etl-service/internal/adapter/openweather"
)

// DefaultLocations is the city list used when WEATHER_LOCATIONS is unset.
const DefaultLocations = "London,New York,Tokyo,Mumbai,Sydney"

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds all job settings, populated from environment variables.
type Config struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration // 0 keeps the HTTP client default
	Locations      []string

	DB DBConfig

	KafkaBrokers []string
	KafkaEnabled bool
	KafkaTopic   string

	PushgatewayURL string
	MetricsJob     string

	LogLevel  string
	LogFormat string
}

// DBConfig describes the relational sink.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Table    string
}

// Addr returns host:port.
func (c DBConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}

	timeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("OPENWEATHER_TIMEOUT", "0s"))
	if err != nil || timeout < 0 {
		return nil, errors.New("invalid OPENWEATHER_TIMEOUT")
	}

	port, err := strconv.Atoi(sharedcfg.EnvOrDefault("DB_PORT", "3306"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, errors.New("invalid DB_PORT")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		APIKey:         apiKey,
		BaseURL:        sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", openweather.DefaultBaseURL),
		RequestTimeout: timeout,
		Locations:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("WEATHER_LOCATIONS", DefaultLocations)),
		DB: DBConfig{
			Host:     sharedcfg.EnvOrDefault("DB_HOST", "localhost"),
			Port:     port,
			User:     sharedcfg.EnvOrDefault("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     sharedcfg.EnvOrDefault("DB_NAME", "weather"),
			Table:    sharedcfg.EnvOrDefault("DB_TABLE", "weather"),
		},
		KafkaBrokers:   brokers,
		KafkaEnabled:   kafkaEnabled,
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-observations"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		MetricsJob:     sharedcfg.EnvOrDefault("METRICS_JOB", "weather_etl"),
		LogLevel:       sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	}

	if len(cfg.Locations) == 0 {
		return nil, errors.New("WEATHER_LOCATIONS is empty")
	}
	if !identifierRe.MatchString(cfg.DB.Table) {
		return nil, fmt.Errorf("invalid DB_TABLE %q", cfg.DB.Table)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}
