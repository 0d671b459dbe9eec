package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Flowlens
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Cache       CacheConfig     `toml:"cache"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Ingest      IngestConfig    `toml:"ingest"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// CacheConfig holds analysis-result cache configuration. When RedisURL is
// empty or unreachable the server falls back to an in-process cache.
type CacheConfig struct {
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"`
}

// GetTTL parses and returns the cache TTL duration
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// AnalysisConfig holds flow-analysis engine configuration.
//
// ClampCallPutRatio switches the call/put ratio zero-guard from the vendor's
// literal behavior (puts = 0 yields the raw call count) to calls/max(puts, 1).
// The literal behavior is the default for compatibility with stored history.
type AnalysisConfig struct {
	ClampCallPutRatio  bool    `toml:"clamp_call_put_ratio"`
	HistoricalDays     int     `toml:"historical_days"`
	HighValueThreshold float64 `toml:"high_value_threshold"` // premium floor for high-value flow, in dollars
}

// IngestConfig holds ingestion limits.
type IngestConfig struct {
	MaxBodyMB int `toml:"max_body_mb"`
	RateLimit int `toml:"rate_limit"` // requests per second on the ingest route
	RateBurst int `toml:"rate_burst"`
}

// SchedulerConfig holds the background re-analysis loop configuration.
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
	Range    string `toml:"range"` // today, week, month
}

// GetInterval parses and returns the scheduler interval duration
func (c *SchedulerConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Namespace: "flowlens",
			Database:  "flow",
			Username:  "root",
			Password:  "root",
		},
		Cache: CacheConfig{
			TTL: "15m",
		},
		Analysis: AnalysisConfig{
			ClampCallPutRatio:  false,
			HistoricalDays:     30,
			HighValueThreshold: 500000,
		},
		Ingest: IngestConfig{
			MaxBodyMB: 20,
			RateLimit: 5,
			RateBurst: 10,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Interval: "30m",
			Range:    "today",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	// Guard against nonsense thresholds
	if config.Analysis.HistoricalDays <= 0 {
		config.Analysis.HistoricalDays = 30
	}
	if config.Analysis.HighValueThreshold <= 0 {
		config.Analysis.HighValueThreshold = 500000
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FLOWLENS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FLOWLENS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FLOWLENS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FLOWLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("FLOWLENS_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if ns := os.Getenv("FLOWLENS_STORAGE_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}
	if db := os.Getenv("FLOWLENS_STORAGE_DATABASE"); db != "" {
		config.Storage.Database = db
	}
	if user := os.Getenv("FLOWLENS_STORAGE_USERNAME"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("FLOWLENS_STORAGE_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}

	if url := os.Getenv("FLOWLENS_REDIS_URL"); url != "" {
		config.Cache.RedisURL = url
	}

	// Gemini key: prefer the generic env name, then the prefixed one
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	} else if key := os.Getenv("FLOWLENS_GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
