// Package config loads the harness's runtime configuration from the
// environment: read, default, validate, return a struct.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDSN         string
	SlackBotToken string
	SlackAppToken string

	Workers           int
	BaseSleepSeconds  int
	MinJitterSeconds  int
	MaxJitterSeconds  int
	MaxAttempts       int
	LeaseMinutes      int
	MaxAgeMinutes     int
	BatchCap          int
	SweepEverySeconds int

	HTTPAddr     string
	OtelExporter string
}

func Load() (Config, error) {
	cfg := Config{
		DBDSN:         os.Getenv("HARNESS_DB_DSN"),
		SlackBotToken: os.Getenv("HARNESS_SLACK_BOT_TOKEN"),
		SlackAppToken: os.Getenv("HARNESS_SLACK_APP_TOKEN"),

		Workers:           getenvInt("HARNESS_WORKERS", 5),
		BaseSleepSeconds:  getenvInt("HARNESS_BASE_SLEEP_SECONDS", 60),
		MinJitterSeconds:  getenvInt("HARNESS_MIN_JITTER_SECONDS", -15),
		MaxJitterSeconds:  getenvInt("HARNESS_MAX_JITTER_SECONDS", 15),
		MaxAttempts:       getenvInt("HARNESS_MAX_ATTEMPTS", 3),
		LeaseMinutes:      getenvInt("HARNESS_LEASE_MINUTES", 10),
		MaxAgeMinutes:     getenvInt("HARNESS_MAX_AGE_MINUTES", 60),
		BatchCap:          getenvInt("HARNESS_BATCH_CAP", 20),
		SweepEverySeconds: getenvInt("HARNESS_SWEEP_EVERY_SECONDS", 300),

		HTTPAddr:     getenvString("HARNESS_HTTP_ADDR", ":8080"),
		OtelExporter: getenvString("HARNESS_OTEL_EXPORTER", "none"),
	}

	if cfg.DBDSN == "" {
		return Config{}, errors.New("HARNESS_DB_DSN is required")
	}
	if cfg.SlackBotToken == "" {
		return Config{}, errors.New("HARNESS_SLACK_BOT_TOKEN is required")
	}
	if cfg.SlackAppToken == "" {
		return Config{}, errors.New("HARNESS_SLACK_APP_TOKEN is required")
	}
	if cfg.Workers < 1 {
		return Config{}, errors.New("HARNESS_WORKERS must be at least 1")
	}
	if cfg.BaseSleepSeconds <= 0 {
		return Config{}, errors.New("HARNESS_BASE_SLEEP_SECONDS must be positive")
	}
	if cfg.MaxJitterSeconds <= cfg.MinJitterSeconds {
		return Config{}, errors.New("HARNESS_MAX_JITTER_SECONDS must exceed HARNESS_MIN_JITTER_SECONDS")
	}
	if cfg.BaseSleepSeconds+cfg.MinJitterSeconds <= 0 {
		return Config{}, errors.New("HARNESS_BASE_SLEEP_SECONDS + HARNESS_MIN_JITTER_SECONDS must stay positive")
	}
	if cfg.SweepEverySeconds <= 0 {
		return Config{}, errors.New("HARNESS_SWEEP_EVERY_SECONDS must be positive")
	}
	switch cfg.OtelExporter {
	case "none", "stdout", "otlp-grpc", "otlp-http":
	default:
		return Config{}, fmt.Errorf("unrecognized HARNESS_OTEL_EXPORTER %q", cfg.OtelExporter)
	}

	return cfg, nil
}

func (c Config) Lease() time.Duration     { return time.Duration(c.LeaseMinutes) * time.Minute }
func (c Config) MaxAge() time.Duration    { return time.Duration(c.MaxAgeMinutes) * time.Minute }
func (c Config) BaseSleep() time.Duration { return time.Duration(c.BaseSleepSeconds) * time.Second }
func (c Config) MinJitter() time.Duration { return time.Duration(c.MinJitterSeconds) * time.Second }
func (c Config) MaxJitter() time.Duration { return time.Duration(c.MaxJitterSeconds) * time.Second }
func (c Config) SweepEvery() time.Duration {
	return time.Duration(c.SweepEverySeconds) * time.Second
}

func getenvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
