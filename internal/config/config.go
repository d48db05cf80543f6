package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/i474232898/weather-trend-forecast/internal/weather"
)

const maxThingSpeakField = 8

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// ThingSpeak channel the series are read from.
	ThingSpeakBaseURL    string
	ThingSpeakChannelID  string
	ThingSpeakReadAPIKey string
	ThingSpeakResults    int
	ThingSpeakMaxRetries int
	Temperature          weather.SeriesID
	Humidity             weather.SeriesID

	// HTTPTimeout bounds each outbound request; ForecastTimeout bounds a whole forecast.
	HTTPTimeout     time.Duration
	ForecastTimeout time.Duration

	// OutlookSchedule is a standard cron expression; empty disables the job.
	OutlookSchedule string
	OutlookHorizon  int

	// Outlook history store.
	StoreDriver     string
	SQLitePath      string
	StoreMaxHistory int           // max number of outlooks kept (0 = unlimited)
	StoreMaxAge     time.Duration // max age of outlooks (0 = unlimited)
}

// Load reads configuration from environment with sensible defaults.
// Callers load any .env file beforehand.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.ThingSpeakBaseURL = getenvDefault("THINGSPEAK_BASE_URL", "https://api.thingspeak.com")
	cfg.ThingSpeakChannelID = strings.TrimSpace(os.Getenv("THINGSPEAK_CHANNEL_ID"))
	if cfg.ThingSpeakChannelID == "" {
		return nil, fmt.Errorf("THINGSPEAK_CHANNEL_ID is required")
	}
	cfg.ThingSpeakReadAPIKey = strings.TrimSpace(os.Getenv("THINGSPEAK_READ_API_KEY"))

	if cfg.ThingSpeakResults, err = getenvInt("THINGSPEAK_RESULTS", 800); err != nil {
		return nil, err
	}
	if cfg.ThingSpeakResults < 1 || cfg.ThingSpeakResults > 8000 {
		return nil, fmt.Errorf("invalid THINGSPEAK_RESULTS %d (allowed: 1-8000)", cfg.ThingSpeakResults)
	}
	if cfg.ThingSpeakMaxRetries, err = getenvInt("THINGSPEAK_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.ThingSpeakMaxRetries < 0 {
		return nil, fmt.Errorf("invalid THINGSPEAK_MAX_RETRIES %d", cfg.ThingSpeakMaxRetries)
	}

	tempField, err := getenvField("THINGSPEAK_TEMPERATURE_FIELD", 1)
	if err != nil {
		return nil, err
	}
	humField, err := getenvField("THINGSPEAK_HUMIDITY_FIELD", 2)
	if err != nil {
		return nil, err
	}
	if tempField == humField {
		return nil, fmt.Errorf("temperature and humidity must use different fields (both %d)", tempField)
	}
	cfg.Temperature = weather.SeriesID{Name: "temperature", Field: tempField}
	cfg.Humidity = weather.SeriesID{Name: "humidity", Field: humField}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ForecastTimeout, err = getenvDuration("FORECAST_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.OutlookSchedule = strings.TrimSpace(os.Getenv("OUTLOOK_SCHEDULE"))
	if cfg.OutlookSchedule != "" {
		if _, err := cron.ParseStandard(cfg.OutlookSchedule); err != nil {
			return nil, fmt.Errorf("invalid OUTLOOK_SCHEDULE: %w", err)
		}
	}
	if cfg.OutlookHorizon, err = getenvInt("OUTLOOK_HORIZON", 24); err != nil {
		return nil, err
	}
	if cfg.OutlookHorizon < 1 {
		return nil, fmt.Errorf("invalid OUTLOOK_HORIZON %d (must be at least 1)", cfg.OutlookHorizon)
	}

	cfg.StoreDriver = getenvDefault("STORE_DRIVER", "memory")
	switch cfg.StoreDriver {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (allowed: memory, sqlite)", cfg.StoreDriver)
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/outlooks.db")

	// Store retention.
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", 96); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "168h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return d, nil
}

func getenvField(key string, def int) (int, error) {
	n, err := getenvInt(key, def)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > maxThingSpeakField {
		return 0, fmt.Errorf("invalid %s %d (allowed: 1-%d)", key, n, maxThingSpeakField)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
