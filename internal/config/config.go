package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the explicit configuration object built once at startup and
// passed by reference into the store, the HTTP server and the exchange
// client. Nothing reads the environment after Load returns.
type Config struct {
	// HTTP Server
	Port        string
	CORSOrigins []string

	// Database
	SQLiteDBPath string

	// Exchange rate upstream
	ExchangeAPIURL   string
	ExchangeTimeout  time.Duration
	ExchangeCacheTTL time.Duration

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Rate limiting
	RequestsPerMinute int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		CORSOrigins: splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendtrack.db"),

		ExchangeAPIURL:   getEnv("EXCHANGE_RATE_API_URL", "https://api.exchangerate-api.com/v4/latest"),
		ExchangeTimeout:  getEnvDuration("EXCHANGE_TIMEOUT", 10*time.Second),
		ExchangeCacheTTL: getEnvDuration("EXCHANGE_CACHE_TTL", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendtrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 60),
	}
}

// Validate checks the configuration and returns all problems as one error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	}

	if c.ExchangeAPIURL == "" {
		errs = append(errs, "exchange rate API URL cannot be empty")
	} else if parsed, err := url.Parse(c.ExchangeAPIURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid exchange rate API URL '%s': %v", c.ExchangeAPIURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid exchange rate API URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	if c.ExchangeTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid exchange timeout %v: must be at least 1 second", c.ExchangeTimeout))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RequestsPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid requests per minute %d: must be at least 1", c.RequestsPerMinute))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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
