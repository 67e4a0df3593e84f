package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is the application version, set at build time.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig    `mapstructure:"server"`
	Database      DatabaseConfig  `mapstructure:"database"`
	Logging       LoggingConfig   `mapstructure:"logging"`
	Metadata      MetadataConfig  `mapstructure:"metadata"`
	Catalog       CatalogConfig   `mapstructure:"catalog"`
	Scheduler     SchedulerConfig `mapstructure:"scheduler"`
	DeveloperMode bool            `mapstructure:"developer_mode"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// TriggersPerMinute caps manual refresh, re-rate and task runs per client IP.
	TriggersPerMinute int `mapstructure:"triggers_per_minute"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MetadataConfig holds configuration for the upstream data providers.
type MetadataConfig struct {
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Watchmode WatchmodeConfig `mapstructure:"watchmode"`
}

// RateLimitConfig describes a token bucket for one provider.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// CircuitBreakerConfig describes when a provider's breaker opens and how long
// it stays open.
type CircuitBreakerConfig struct {
	ConsecutiveFailures int           `mapstructure:"consecutive_failures"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey         string               `mapstructure:"api_key"`
	BaseURL        string               `mapstructure:"base_url"`
	ImageBaseURL   string               `mapstructure:"image_base_url"`
	Timeout        int                  `mapstructure:"timeout_seconds"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// WatchmodeConfig holds Watchmode API configuration.
type WatchmodeConfig struct {
	APIKey         string               `mapstructure:"api_key"`
	BaseURL        string               `mapstructure:"base_url"`
	Timeout        int                  `mapstructure:"timeout_seconds"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	PageSize       int                  `mapstructure:"page_size"`
	MaxPages       int                  `mapstructure:"max_pages"`
}

// CatalogConfig holds the refresh pipeline settings.
type CatalogConfig struct {
	// Region is the key of the refresh state row ("UK").
	Region string `mapstructure:"region"`
	// Jurisdiction is the ISO 3166-1 code used for discovery and tier 1 ratings.
	Jurisdiction string `mapstructure:"jurisdiction"`
	// FallbackJurisdiction is consulted for tier 2 ratings.
	FallbackJurisdiction string        `mapstructure:"fallback_jurisdiction"`
	SourceID             int           `mapstructure:"source_id"`
	FreshnessWindow      time.Duration `mapstructure:"freshness_window"`
	LeaseTTL             time.Duration `mapstructure:"lease_ttl"`
	LeaseRenewEvery      int           `mapstructure:"lease_renew_every"`
	CastLimit            int           `mapstructure:"cast_limit"`
	// ProviderWait is how long a refresh pauses when the metadata provider's
	// circuit breaker is open before retrying the same title. It should be at
	// least the breaker timeout.
	ProviderWait time.Duration `mapstructure:"provider_wait"`
	// ProviderRetries bounds those pauses per title. A provider still
	// unavailable after them fails the whole refresh.
	ProviderRetries int `mapstructure:"provider_retries"`
}

// SchedulerConfig holds cron expressions for background tasks.
type SchedulerConfig struct {
	RefreshCheckCron string `mapstructure:"refresh_check_cron"`
	RerateCron       string `mapstructure:"rerate_cron"`
	RefreshOnStart   bool   `mapstructure:"refresh_on_start"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5000,
			TriggersPerMinute: 6,
		},
		Database: DatabaseConfig{
			Path: "./data/flixcat.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metadata: MetadataConfig{
			TMDB: TMDBConfig{
				APIKey:       EmbeddedTMDBKey,
				BaseURL:      "https://api.themoviedb.org/3",
				ImageBaseURL: "https://image.tmdb.org/t/p",
				Timeout:      15,
				RateLimit:    RateLimitConfig{RequestsPerSecond: 10, Burst: 10},
				CircuitBreaker: CircuitBreakerConfig{
					ConsecutiveFailures: 5,
					Timeout:             30 * time.Second,
				},
			},
			Watchmode: WatchmodeConfig{
				APIKey:    EmbeddedWatchmodeKey,
				BaseURL:   "https://api.watchmode.com/v1",
				Timeout:   30,
				RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
				CircuitBreaker: CircuitBreakerConfig{
					ConsecutiveFailures: 5,
					Timeout:             30 * time.Second,
				},
				PageSize: 250,
				MaxPages: 50,
			},
		},
		Catalog: CatalogConfig{
			Region:               "UK",
			Jurisdiction:         "GB",
			FallbackJurisdiction: "US",
			SourceID:             203,
			FreshnessWindow:      24 * time.Hour,
			LeaseTTL:             2 * time.Hour,
			LeaseRenewEvery:      100,
			CastLimit:            10,
			ProviderWait:         30 * time.Second,
			ProviderRetries:      10,
		},
		Scheduler: SchedulerConfig{
			RefreshCheckCron: "0 * * * *",
			RerateCron:       "0 4 * * 0",
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.flixcat")
	}

	v.SetEnvPrefix("FLIXCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults mirrors Default() so that every key is known to viper,
// which AutomaticEnv needs for Unmarshal to pick up env overrides.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.triggers_per_minute", d.Server.TriggersPerMinute)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("metadata.tmdb.api_key", d.Metadata.TMDB.APIKey)
	v.SetDefault("metadata.tmdb.base_url", d.Metadata.TMDB.BaseURL)
	v.SetDefault("metadata.tmdb.image_base_url", d.Metadata.TMDB.ImageBaseURL)
	v.SetDefault("metadata.tmdb.timeout_seconds", d.Metadata.TMDB.Timeout)
	v.SetDefault("metadata.tmdb.rate_limit.requests_per_second", d.Metadata.TMDB.RateLimit.RequestsPerSecond)
	v.SetDefault("metadata.tmdb.rate_limit.burst", d.Metadata.TMDB.RateLimit.Burst)
	v.SetDefault("metadata.tmdb.circuit_breaker.consecutive_failures", d.Metadata.TMDB.CircuitBreaker.ConsecutiveFailures)
	v.SetDefault("metadata.tmdb.circuit_breaker.timeout", d.Metadata.TMDB.CircuitBreaker.Timeout)

	v.SetDefault("metadata.watchmode.api_key", d.Metadata.Watchmode.APIKey)
	v.SetDefault("metadata.watchmode.base_url", d.Metadata.Watchmode.BaseURL)
	v.SetDefault("metadata.watchmode.timeout_seconds", d.Metadata.Watchmode.Timeout)
	v.SetDefault("metadata.watchmode.rate_limit.requests_per_second", d.Metadata.Watchmode.RateLimit.RequestsPerSecond)
	v.SetDefault("metadata.watchmode.rate_limit.burst", d.Metadata.Watchmode.RateLimit.Burst)
	v.SetDefault("metadata.watchmode.circuit_breaker.consecutive_failures", d.Metadata.Watchmode.CircuitBreaker.ConsecutiveFailures)
	v.SetDefault("metadata.watchmode.circuit_breaker.timeout", d.Metadata.Watchmode.CircuitBreaker.Timeout)
	v.SetDefault("metadata.watchmode.page_size", d.Metadata.Watchmode.PageSize)
	v.SetDefault("metadata.watchmode.max_pages", d.Metadata.Watchmode.MaxPages)

	v.SetDefault("catalog.region", d.Catalog.Region)
	v.SetDefault("catalog.jurisdiction", d.Catalog.Jurisdiction)
	v.SetDefault("catalog.fallback_jurisdiction", d.Catalog.FallbackJurisdiction)
	v.SetDefault("catalog.source_id", d.Catalog.SourceID)
	v.SetDefault("catalog.freshness_window", d.Catalog.FreshnessWindow)
	v.SetDefault("catalog.lease_ttl", d.Catalog.LeaseTTL)
	v.SetDefault("catalog.lease_renew_every", d.Catalog.LeaseRenewEvery)
	v.SetDefault("catalog.cast_limit", d.Catalog.CastLimit)
	v.SetDefault("catalog.provider_wait", d.Catalog.ProviderWait)
	v.SetDefault("catalog.provider_retries", d.Catalog.ProviderRetries)

	v.SetDefault("scheduler.refresh_check_cron", d.Scheduler.RefreshCheckCron)
	v.SetDefault("scheduler.rerate_cron", d.Scheduler.RerateCron)
	v.SetDefault("scheduler.refresh_on_start", d.Scheduler.RefreshOnStart)

	v.SetDefault("developer_mode", false)
}

// Validate checks values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if c.Catalog.Region == "" {
		return fmt.Errorf("catalog.region must not be empty")
	}
	if c.Catalog.Jurisdiction == "" {
		return fmt.Errorf("catalog.jurisdiction must not be empty")
	}
	if c.Catalog.FreshnessWindow <= 0 {
		return fmt.Errorf("catalog.freshness_window must be positive")
	}
	if c.Catalog.LeaseTTL <= 0 {
		return fmt.Errorf("catalog.lease_ttl must be positive")
	}
	if c.Metadata.Watchmode.PageSize <= 0 || c.Metadata.Watchmode.MaxPages <= 0 {
		return fmt.Errorf("metadata.watchmode page_size and max_pages must be positive")
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
