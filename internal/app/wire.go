package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/alanyoungcy/retailboard/internal/blob/s3"
	"github.com/alanyoungcy/retailboard/internal/cache/redis"
	"github.com/alanyoungcy/retailboard/internal/config"
	"github.com/alanyoungcy/retailboard/internal/domain"
	"github.com/alanyoungcy/retailboard/internal/notify"
	"github.com/alanyoungcy/retailboard/internal/pipeline"
	"github.com/alanyoungcy/retailboard/internal/platform/polymarket"
	"github.com/alanyoungcy/retailboard/internal/platform/stocks"
	"github.com/alanyoungcy/retailboard/internal/store/postgres"
)

// Dependencies bundles every dependency the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
// History and Archiver stay nil when their features are disabled.
type Dependencies struct {
	// API clients
	Gamma  *polymarket.GammaClient
	Clob   *polymarket.ClobClient
	Stocks *stocks.Client

	// Caches and messaging
	Snapshots domain.SnapshotCache
	Series    domain.SeriesCache
	Signals   domain.SignalBus

	// Optional persistence
	History  domain.CycleStore
	Archiver pipeline.SnapshotArchiver

	// Operator alerts
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Gamma:  polymarket.NewGammaClient(cfg.Polymarket.GammaHost),
		Clob:   polymarket.NewClobClient(cfg.Polymarket.ClobHost),
		Stocks: stocks.NewClient(cfg.Stocks.BaseURL, cfg.Stocks.APIToken),
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	seriesTTL := time.Duration(cfg.Redis.SeriesTTLMinutes) * time.Minute

	deps.Snapshots = redis.NewSnapshotCache(redisClient)
	deps.Series = redis.NewSeriesCache(redisClient, seriesTTL)
	deps.Signals = redis.NewSignalBus(redisClient)

	// --- PostgreSQL (cycle history, optional) ---
	if cfg.Pipeline.HistoryEnabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}

		deps.History = postgres.NewCycleStore(pgClient.Pool())
	}

	// --- S3 blob storage (snapshot archive, optional) ---
	if cfg.Pipeline.ArchiveEnabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
	}

	// --- Operator alerts ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, slog.Default())

	return deps, cleanup, nil
}
