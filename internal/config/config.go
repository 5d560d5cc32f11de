package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // FEED_TIMEZONE must resolve on minimal images

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/footfall-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Feed source. FeedPath wins over FeedURL when both are set.
	FeedURL       string
	FeedPath      string
	FeedLocation  *time.Location
	BusinessHours domain.BusinessHours

	// HTTP fetching shared by the feed and weather clients.
	FetchTimeout    time.Duration
	FetchMaxRetries int
	FetchRetryDelay time.Duration
	BreakerTimeout  time.Duration

	// Open-Meteo weather enrichment.
	WeatherEnabled   bool
	WeatherBaseURL   string
	WeatherLatitude  float64
	WeatherLongitude float64
	WeatherCacheSize int // days

	RefreshSchedule string
	RunTimeout      time.Duration

	// Optional sink for daily records.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first if present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	tzName := sharedcfg.EnvOrDefault("FEED_TIMEZONE", "Europe/Brussels")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TIMEZONE %q: %w", tzName, err)
	}

	hours, err := domain.ParseBusinessHours(os.Getenv("BUSINESS_HOURS"), domain.DefaultBusinessHours())
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_HOURS: %w", err)
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	retryDelay, err := parsePositiveDuration("FETCH_RETRY_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	breakerTimeout, err := parsePositiveDuration("BREAKER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	runTimeout, err := parsePositiveDuration("RUN_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}

	maxRetries, err := strconv.Atoi(sharedcfg.EnvOrDefault("FETCH_MAX_RETRIES", "0"))
	if err != nil || maxRetries < 0 || maxRetries > 10 {
		return nil, errors.New("invalid FETCH_MAX_RETRIES: must be between 0 and 10")
	}

	lat, err := parseFloatInRange("WEATHER_LATITUDE", "50.8503", -90, 90)
	if err != nil {
		return nil, err
	}
	lon, err := parseFloatInRange("WEATHER_LONGITUDE", "4.3517", -180, 180)
	if err != nil {
		return nil, err
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("WEATHER_CACHE_SIZE", "366"))
	if err != nil || cacheSize <= 0 {
		return nil, errors.New("invalid WEATHER_CACHE_SIZE: must be a positive integer")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedURL:       sharedcfg.EnvOrDefault("FEED_URL", "https://raw.githubusercontent.com/JFT51/ExRest/refs/heads/main/ikxe.csv"),
		FeedPath:      os.Getenv("FEED_PATH"),
		FeedLocation:  loc,
		BusinessHours: hours,

		FetchTimeout:    fetchTimeout,
		FetchMaxRetries: maxRetries,
		FetchRetryDelay: retryDelay,
		BreakerTimeout:  breakerTimeout,

		WeatherEnabled:   parseBool("WEATHER_ENABLED", true),
		WeatherBaseURL:   strings.TrimRight(sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1"), "/"),
		WeatherLatitude:  lat,
		WeatherLongitude: lon,
		WeatherCacheSize: cacheSize,

		RefreshSchedule: sharedcfg.EnvOrDefault("REFRESH_SCHEDULE", "@hourly"),
		RunTimeout:      runTimeout,

		KafkaEnabled:   parseBool("KAFKA_ENABLED", false),
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "footfall-daily"),
	}

	if cfg.FeedURL == "" && cfg.FeedPath == "" {
		return nil, errors.New("FEED_URL or FEED_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseFloatInRange(key, def string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("invalid %s: must be between %g and %g", key, lo, hi)
	}
	return v, nil
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return def
}
