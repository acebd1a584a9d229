// Package config defines the top-level configuration for the retail dashboard
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by RETAILBOARD_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Stocks     StocksConfig     `toml:"stocks"`
	Dashboard  DashboardConfig  `toml:"dashboard"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds prediction-market API endpoints.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	ClobHost  string `toml:"clob_host"`
}

// StocksConfig holds the financial-data provider's endpoint and credentials.
type StocksConfig struct {
	BaseURL  string `toml:"base_url"`
	APIToken string `toml:"api_token"`
}

// DashboardConfig holds the chart and alignment parameters.
type DashboardConfig struct {
	// AlignWindowSeconds is the nearest-neighbor tolerance when overlaying a
	// probability series on a stock series. 259200 (3 days) bridges weekend
	// and holiday gaps in business-hours trading data.
	AlignWindowSeconds int64 `toml:"align_window_seconds"`
	// HistoryDays is how far back series fetches reach for charts.
	HistoryDays int `toml:"history_days"`
}

// PipelineConfig holds fetch-cycle parameters.
type PipelineConfig struct {
	PollInterval duration `toml:"poll_interval"`
	// EventTags are the company tag slugs queried first each cycle; these
	// tag-filtered sources take dedup priority over the general listings.
	EventTags []string `toml:"event_tags"`
	// SearchQueries are the keyword queries run after the tag sources.
	SearchQueries []string `toml:"search_queries"`
	// MarketPageSize bounds the general active-markets listing fetch.
	MarketPageSize  int  `toml:"market_page_size"`
	ArchiveEnabled  bool `toml:"archive_enabled"`
	HistoryEnabled  bool `toml:"history_enabled"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	// SeriesTTLMinutes is how long fetched time series stay cached.
	SeriesTTLMinutes int `toml:"series_ttl_minutes"`
}

// PostgresConfig holds PostgreSQL connection parameters for the cycle
// history store.
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds optional operator alert channels. All channels are
// disabled when their credentials are empty.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
	// Events filters which event types are delivered; empty allows all.
	Events []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			ClobHost:  "https://clob.polymarket.com",
		},
		Stocks: StocksConfig{
			BaseURL: "https://finnhub.io/api/v1",
		},
		Dashboard: DashboardConfig{
			AlignWindowSeconds: 259_200,
			HistoryDays:        90,
		},
		Pipeline: PipelineConfig{
			PollInterval: duration{2 * time.Minute},
			EventTags:    []string{"walmart", "amazon", "costco", "target"},
			SearchQueries: []string{
				"walmart", "amazon", "costco", "target earnings",
			},
			MarketPageSize: 500,
			ArchiveEnabled: false,
			HistoryEnabled: false,
		},
		Redis: RedisConfig{
			Addr:             "localhost:6379",
			DB:               0,
			PoolSize:         20,
			MaxRetries:       3,
			SeriesTTLMinutes: 10,
		},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "retailboard",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "retailboard-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":  true, // pipeline + HTTP + WebSocket
	"poll":   true, // pipeline only
	"server": true, // HTTP only, reading the cache
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, poll, server)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}

	if c.Stocks.BaseURL == "" {
		errs = append(errs, "stocks: base_url must not be empty")
	}
	if c.Stocks.APIToken == "" {
		errs = append(errs, "stocks: api_token must be set (see provider dashboard)")
	}

	if c.Dashboard.AlignWindowSeconds <= 0 {
		errs = append(errs, "dashboard: align_window_seconds must be > 0")
	}
	if c.Dashboard.HistoryDays <= 0 {
		errs = append(errs, "dashboard: history_days must be > 0")
	}

	if c.Pipeline.PollInterval.Duration <= 0 {
		errs = append(errs, "pipeline: poll_interval must be > 0")
	}
	if len(c.Pipeline.EventTags) == 0 {
		errs = append(errs, "pipeline: event_tags must not be empty")
	}
	if c.Pipeline.MarketPageSize <= 0 {
		errs = append(errs, "pipeline: market_page_size must be > 0")
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.Pipeline.HistoryEnabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if c.Pipeline.ArchiveEnabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archiving is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archiving is enabled")
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
