package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	Port        string
	DatabaseURL string
	FrontendURL string
	Environment string
	LogLevel    string

	RateLimit       int
	RateLimitWindow time.Duration

	// Imprest drafts
	AutosaveDelay      time.Duration
	DraftRetention     time.Duration
	DraftPurgeSchedule string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RateLimit:       getEnvInt("RATE_LIMIT", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		AutosaveDelay:      getEnvDuration("AUTOSAVE_DELAY", 5*time.Second),
		DraftRetention:     getEnvDuration("DRAFT_RETENTION", 30*24*time.Hour),
		DraftPurgeSchedule: getEnv("DRAFT_PURGE_SCHEDULE", "@daily"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "anggaran"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "imprest_submitted"),
	}
}

// IsProduction reports whether logs should be JSON and masked.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL environment variable is required")
	}

	if c.RateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimit))
	}
	if c.RateLimitWindow < time.Second {
		errors = append(errors, fmt.Sprintf("invalid rate limit window %v: must be at least 1 second", c.RateLimitWindow))
	}

	if c.AutosaveDelay < 100*time.Millisecond || c.AutosaveDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid autosave delay %v: must be between 100ms and 1 minute", c.AutosaveDelay))
	}
	if c.DraftRetention < time.Hour {
		errors = append(errors, fmt.Sprintf("invalid draft retention %v: must be at least 1 hour", c.DraftRetention))
	}
	if _, err := cron.ParseStandard(c.DraftPurgeSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid draft purge schedule '%s': %v", c.DraftPurgeSchedule, err))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
