package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies RETAILBOARD_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known RETAILBOARD_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "RETAILBOARD_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "RETAILBOARD_POLYMARKET_CLOB_HOST")

	// ── Stocks ──
	setStr(&cfg.Stocks.BaseURL, "RETAILBOARD_STOCKS_BASE_URL")
	setStr(&cfg.Stocks.APIToken, "RETAILBOARD_STOCKS_API_TOKEN")

	// ── Dashboard ──
	setInt64(&cfg.Dashboard.AlignWindowSeconds, "RETAILBOARD_DASHBOARD_ALIGN_WINDOW_SECONDS")
	setInt(&cfg.Dashboard.HistoryDays, "RETAILBOARD_DASHBOARD_HISTORY_DAYS")

	// ── Pipeline ──
	setDuration(&cfg.Pipeline.PollInterval, "RETAILBOARD_PIPELINE_POLL_INTERVAL")
	setStringSlice(&cfg.Pipeline.EventTags, "RETAILBOARD_PIPELINE_EVENT_TAGS")
	setStringSlice(&cfg.Pipeline.SearchQueries, "RETAILBOARD_PIPELINE_SEARCH_QUERIES")
	setInt(&cfg.Pipeline.MarketPageSize, "RETAILBOARD_PIPELINE_MARKET_PAGE_SIZE")
	setBool(&cfg.Pipeline.ArchiveEnabled, "RETAILBOARD_PIPELINE_ARCHIVE_ENABLED")
	setBool(&cfg.Pipeline.HistoryEnabled, "RETAILBOARD_PIPELINE_HISTORY_ENABLED")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "RETAILBOARD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "RETAILBOARD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "RETAILBOARD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "RETAILBOARD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "RETAILBOARD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "RETAILBOARD_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.SeriesTTLMinutes, "RETAILBOARD_REDIS_SERIES_TTL_MINUTES")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "RETAILBOARD_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "RETAILBOARD_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "RETAILBOARD_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "RETAILBOARD_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "RETAILBOARD_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "RETAILBOARD_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "RETAILBOARD_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "RETAILBOARD_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "RETAILBOARD_POSTGRES_POOL_MIN_CONNS")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "RETAILBOARD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "RETAILBOARD_S3_REGION")
	setStr(&cfg.S3.Bucket, "RETAILBOARD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "RETAILBOARD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "RETAILBOARD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "RETAILBOARD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "RETAILBOARD_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setInt(&cfg.Server.Port, "RETAILBOARD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "RETAILBOARD_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "RETAILBOARD_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "RETAILBOARD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "RETAILBOARD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "RETAILBOARD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "RETAILBOARD_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "RETAILBOARD_MODE")
	setStr(&cfg.LogLevel, "RETAILBOARD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
