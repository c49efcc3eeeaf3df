package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Database. Host and credentials come with every request; only the
	// logical database name and timeouts are deployment settings.
	DataBackend      string
	DBName           string
	DBDefaultPort    int
	DBConnectTimeout time.Duration
	QueryTimeout     time.Duration
	SQLiteDBPath     string

	// Reports
	NormalizeCorrectionsFile string
	DisplayCapitalize        string
	LatestActivitiesMax      int

	// AMQP. Report events are disabled when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Events worker
	AuditSummaryInterval time.Duration
	SlowReportThreshold  time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "3001"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:      getEnv("DATA_BACKEND", BackendMySQL),
		DBName:           getEnv("DB_NAME", "db_prod"),
		DBDefaultPort:    getEnvInt("DB_DEFAULT_PORT", 3306),
		DBConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		QueryTimeout:     getEnvDuration("QUERY_TIMEOUT", 30*time.Second),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/prodboard.db"),

		NormalizeCorrectionsFile: getEnv("NORMALIZE_CORRECTIONS_FILE", ""),
		DisplayCapitalize:        getEnv("DISPLAY_CAPITALIZE", "all"),
		LatestActivitiesMax:      getEnvInt("LATEST_ACTIVITIES_MAX", 100),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "prodboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_events"),

		AuditSummaryInterval: getEnvDuration("AUDIT_SUMMARY_INTERVAL", 5*time.Minute),
		SlowReportThreshold:  getEnvDuration("SLOW_REPORT_THRESHOLD", 5*time.Second),
	}

	return cfg
}

// EventsEnabled reports whether report events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBDefaultPort < 1 || c.DBDefaultPort > 65535 {
		errors = append(errors, fmt.Sprintf("invalid default database port %d: must be between 1 and 65535", c.DBDefaultPort))
	}

	validBackends := []string{BackendMySQL, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendMySQL && strings.TrimSpace(c.DBName) == "" {
		errors = append(errors, "database name cannot be empty when using mysql backend")
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DBConnectTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid connect timeout %v: must be positive", c.DBConnectTimeout))
	}
	if c.QueryTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid query timeout %v: must not be negative", c.QueryTimeout))
	}

	if c.RateLimitRequests < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitRequests))
	}
	if c.RateLimitWindow < time.Second {
		errors = append(errors, fmt.Sprintf("invalid rate limit window %v: must be at least 1 second", c.RateLimitWindow))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}
	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	validPolicies := []string{"all", "material", "none"}
	if !slices.Contains(validPolicies, strings.ToLower(c.DisplayCapitalize)) {
		errors = append(errors, fmt.Sprintf("invalid display capitalization '%s': must be one of %v", c.DisplayCapitalize, validPolicies))
	}

	if c.LatestActivitiesMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid latest activities max %d: must be at least 1", c.LatestActivitiesMax))
	}

	if c.NormalizeCorrectionsFile != "" {
		if _, err := os.Stat(c.NormalizeCorrectionsFile); err != nil {
			errors = append(errors, fmt.Sprintf("normalization corrections file is not readable: %s", c.NormalizeCorrectionsFile))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
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

	if c.AuditSummaryInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid audit summary interval %v: must be at least 1 second", c.AuditSummaryInterval))
	}
	if c.SlowReportThreshold <= 0 {
		errors = append(errors, fmt.Sprintf("invalid slow report threshold %v: must be positive", c.SlowReportThreshold))
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

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
