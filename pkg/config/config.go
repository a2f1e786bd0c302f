package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all SDK configuration.
type Config struct {
	// Application
	LogLevel string
	OpsPort  string

	// Marketplace API
	APIHostname string
	APIVersion  string
	APIKey      string

	// OAuth
	OAuthTokenURL        string
	OAuthAudience        string
	ClientID             string
	ClientSecret         string
	RefreshToken         string
	TokenRefreshInterval time.Duration

	// Transport policies
	RequestInterval   time.Duration
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryTimeout      time.Duration

	// Inventory
	Currency     string
	BatchSize    int
	BatchTimeout time.Duration

	// Journal
	JournalMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		OpsPort:  getEnvOrDefault("OPS_PORT", ""),

		// Marketplace API defaults
		APIHostname: getEnvOrDefault("STOCKX_API_HOSTNAME", "api.stockx.com"),
		APIVersion:  getEnvOrDefault("STOCKX_API_VERSION", "v2"),
		APIKey:      os.Getenv("STOCKX_API_KEY"),

		// OAuth defaults
		OAuthTokenURL:        getEnvOrDefault("STOCKX_OAUTH_TOKEN_URL", "https://accounts.stockx.com/oauth/token"),
		OAuthAudience:        getEnvOrDefault("STOCKX_OAUTH_AUDIENCE", "gateway.stockx.com"),
		ClientID:             os.Getenv("STOCKX_CLIENT_ID"),
		ClientSecret:         os.Getenv("STOCKX_CLIENT_SECRET"),
		RefreshToken:         os.Getenv("STOCKX_REFRESH_TOKEN"),
		TokenRefreshInterval: getDurationOrDefault("STOCKX_TOKEN_REFRESH_INTERVAL", 3600*time.Second),

		// Transport defaults
		RequestInterval:   getDurationOrDefault("STOCKX_REQUEST_INTERVAL", 1*time.Second),
		RetryMaxAttempts:  getIntOrDefault("STOCKX_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: getDurationOrDefault("STOCKX_RETRY_INITIAL_DELAY", 2*time.Second),
		RetryTimeout:      getDurationOrDefault("STOCKX_RETRY_TIMEOUT", 60*time.Second),

		// Inventory defaults
		Currency:     getEnvOrDefault("STOCKX_CURRENCY", "EUR"),
		BatchSize:    getIntOrDefault("STOCKX_BATCH_SIZE", 100),
		BatchTimeout: getDurationOrDefault("STOCKX_BATCH_TIMEOUT", 60*time.Second),

		// Journal defaults
		JournalMode:  getEnvOrDefault("JOURNAL_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "stockroom"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "stockroom"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "stockroom"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.APIHostname == "" {
		return fmt.Errorf("STOCKX_API_HOSTNAME cannot be empty")
	}

	if c.APIVersion == "" {
		return fmt.Errorf("STOCKX_API_VERSION cannot be empty")
	}

	if c.RequestInterval <= 0 {
		return fmt.Errorf("STOCKX_REQUEST_INTERVAL must be positive, got %v", c.RequestInterval)
	}

	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("STOCKX_RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}

	// The marketplace rejects batch submissions above 500 items.
	if c.BatchSize < 1 || c.BatchSize > 500 {
		return fmt.Errorf("STOCKX_BATCH_SIZE must be between 1 and 500, got %d", c.BatchSize)
	}

	if c.JournalMode != "console" && c.JournalMode != "postgres" {
		return fmt.Errorf("JOURNAL_MODE must be 'console' or 'postgres', got %q", c.JournalMode)
	}

	return nil
}

// BaseURL returns the complete base URL for API requests.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("https://%s/%s", c.APIHostname, c.APIVersion)
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
