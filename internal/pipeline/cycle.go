// Package pipeline runs the poll cycle that turns upstream market data into
// dashboard snapshots.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/retailboard/internal/aggregate"
	"github.com/alanyoungcy/retailboard/internal/domain"
	"github.com/alanyoungcy/retailboard/internal/metrics"
	"github.com/alanyoungcy/retailboard/internal/platform/polymarket"
)

// SnapshotChannel is the pub/sub channel on which completed snapshots are
// announced.
const SnapshotChannel = "snapshot"

// maxListingPages bounds the catch-all event and market listings. Tag and
// search sources are expected to surface almost everything relevant; the
// listings exist to catch markets they miss, so a handful of pages is enough.
const maxListingPages = 5

// GammaSource is the slice of the Gamma API the cycle reads from.
type GammaSource interface {
	GetEventsByTag(ctx context.Context, tag string, limit int) ([]polymarket.APIEvent, error)
	SearchMarkets(ctx context.Context, query string) ([]polymarket.APIMarket, error)
	GetEvents(ctx context.Context, limit, offset int) ([]polymarket.APIEvent, error)
	GetMarkets(ctx context.Context, limit, offset int) ([]polymarket.APIMarket, error)
}

// SnapshotArchiver persists completed snapshots to cold storage.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Alerter delivers operator alerts about cycle health.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Deps bundles the collaborators a Cycle needs. History and Archiver are
// optional; a nil value disables that step.
type Deps struct {
	Gamma      GammaSource
	Aggregator *aggregate.Aggregator
	Snapshots  domain.SnapshotCache
	Signals    domain.SignalBus
	History    domain.CycleStore
	Archiver   SnapshotArchiver
	Alerts     Alerter
}

// Config holds the tunable fetch parameters for a Cycle.
type Config struct {
	// EventTags are queried first, one source per tag.
	EventTags []string
	// SearchQueries are queried next, one source per query.
	SearchQueries []string
	// MarketPageSize is the page size for the catch-all listing source.
	MarketPageSize int
}

// Cycle fetches markets from every configured source, buckets them by
// retailer, and publishes the resulting snapshot.
type Cycle struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger
}

// NewCycle creates a Cycle.
func NewCycle(deps Deps, cfg Config, logger *slog.Logger) *Cycle {
	if cfg.MarketPageSize <= 0 {
		cfg.MarketPageSize = 100
	}
	return &Cycle{deps: deps, cfg: cfg, logger: logger}
}

// Run executes a single poll cycle. Individual source failures are tolerated
// and logged; the cycle only fails when every source fails, so one upstream
// hiccup degrades the snapshot instead of losing it.
func (c *Cycle) Run(ctx context.Context) error {
	start := time.Now()

	sources, failed := c.fetchSources(ctx)
	if failed == len(sources) {
		metrics.CyclesTotal.WithLabelValues("failed").Inc()
		c.alert(ctx, "cycle_failed", "Poll cycle failed",
			fmt.Sprintf("All %d upstream sources failed; keeping the previous snapshot.", len(sources)))
		return fmt.Errorf("pipeline: all %d sources failed: %w", len(sources), domain.ErrAllSourcesFailed)
	}

	buckets := c.deps.Aggregator.Aggregate(sources)

	snap := domain.Snapshot{
		CycleID:   uuid.NewString(),
		Buckets:   buckets,
		FetchedAt: time.Now().UTC(),
	}

	if err := c.deps.Snapshots.SetLatest(ctx, snap); err != nil {
		metrics.CyclesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("pipeline: store snapshot: %w", err)
	}

	c.publish(ctx, snap)
	c.recordHistory(ctx, snap, len(sources), failed)
	c.archive(ctx, snap)

	for retailer, markets := range buckets {
		metrics.BucketSize.WithLabelValues(string(retailer)).Set(float64(len(markets)))
	}
	metrics.CycleDuration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	if failed > 0 {
		outcome = "degraded"
	}
	metrics.CyclesTotal.WithLabelValues(outcome).Inc()

	c.logger.Info("cycle complete",
		slog.String("cycle_id", snap.CycleID),
		slog.Int("markets", snap.Total()),
		slog.Int("sources", len(sources)),
		slog.Int("sources_failed", failed),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// RunLoop runs poll cycles on a repeating interval until the context is
// cancelled. An immediate cycle runs on start so the dashboard has data
// without waiting for the first tick.
func (c *Cycle) RunLoop(ctx context.Context, interval time.Duration) error {
	if err := c.Run(ctx); err != nil {
		c.logger.Error("cycle failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("cycle loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := c.Run(ctx); err != nil {
				c.logger.Error("cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}

// fetchSources fetches every configured source concurrently and returns them
// in priority order: event tags first, then search queries, then the general
// event listing, then the flat market listing. The order matters because the
// aggregator keeps the first record it sees for a given market ID. A failed
// source contributes an empty market list.
func (c *Cycle) fetchSources(ctx context.Context) (sources []aggregate.Source, failed int) {
	type job struct {
		name  string
		fetch func(context.Context) ([]domain.Market, error)
	}

	var jobs []job
	for _, tag := range c.cfg.EventTags {
		tag := tag
		jobs = append(jobs, job{
			name: "events:" + tag,
			fetch: func(ctx context.Context) ([]domain.Market, error) {
				events, err := c.deps.Gamma.GetEventsByTag(ctx, tag, 100)
				if err != nil {
					return nil, err
				}
				var markets []domain.Market
				for _, ev := range events {
					markets = append(markets, polymarket.NormalizeEvent(ev)...)
				}
				return markets, nil
			},
		})
	}
	for _, query := range c.cfg.SearchQueries {
		query := query
		jobs = append(jobs, job{
			name: "search:" + query,
			fetch: func(ctx context.Context) ([]domain.Market, error) {
				raw, err := c.deps.Gamma.SearchMarkets(ctx, query)
				if err != nil {
					return nil, err
				}
				return polymarket.NormalizeAll(raw), nil
			},
		})
	}
	jobs = append(jobs, job{name: "events", fetch: c.fetchEventListing})
	jobs = append(jobs, job{name: "listing", fetch: c.fetchListing})

	results := make([]aggregate.Source, len(jobs))
	errs := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, j := range jobs {
		i, j := i, j
		results[i] = aggregate.Source{Name: j.name}
		g.Go(func() error {
			markets, err := j.fetch(gctx)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i].Markets = markets
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		metrics.SourceFailures.WithLabelValues(results[i].Name).Inc()
		c.logger.Warn("source fetch failed",
			slog.String("source", results[i].Name),
			slog.String("error", err.Error()),
		)
	}
	return results, failed
}

// fetchEventListing paginates the general active-events listing. Events carry
// parent metadata for their nested markets, so this source outranks the flat
// market listing.
func (c *Cycle) fetchEventListing(ctx context.Context) ([]domain.Market, error) {
	var markets []domain.Market
	for page := 0; page < maxListingPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		events, err := c.deps.Gamma.GetEvents(ctx, c.cfg.MarketPageSize, page*c.cfg.MarketPageSize)
		if err != nil {
			return nil, fmt.Errorf("event listing page %d: %w", page, err)
		}

		for _, ev := range events {
			markets = append(markets, polymarket.NormalizeEvent(ev)...)
		}
		if len(events) < c.cfg.MarketPageSize {
			break
		}
	}
	return markets, nil
}

// fetchListing paginates the catch-all market listing.
func (c *Cycle) fetchListing(ctx context.Context) ([]domain.Market, error) {
	var markets []domain.Market
	for page := 0; page < maxListingPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.deps.Gamma.GetMarkets(ctx, c.cfg.MarketPageSize, page*c.cfg.MarketPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}

		markets = append(markets, polymarket.NormalizeAll(raw)...)
		if len(raw) < c.cfg.MarketPageSize {
			break
		}
	}
	return markets, nil
}

// publish announces the snapshot on the signal bus. Failures are logged but
// do not fail the cycle; the snapshot is already stored and HTTP clients can
// read it.
func (c *Cycle) publish(ctx context.Context, snap domain.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		c.logger.Error("marshal snapshot for publish", slog.String("error", err.Error()))
		return
	}
	if err := c.deps.Signals.Publish(ctx, SnapshotChannel, payload); err != nil {
		c.logger.Warn("publish snapshot", slog.String("error", err.Error()))
	}
}

// recordHistory persists the cycle summary when a history store is wired.
func (c *Cycle) recordHistory(ctx context.Context, snap domain.Snapshot, total, failed int) {
	if c.deps.History == nil {
		return
	}

	counts := make(map[domain.Retailer]int, len(snap.Buckets))
	for retailer, markets := range snap.Buckets {
		counts[retailer] = len(markets)
	}

	rec := domain.CycleRecord{
		CycleID:      snap.CycleID,
		FetchedAt:    snap.FetchedAt,
		BucketCounts: counts,
		SourceTotal:  total,
		SourceFailed: failed,
	}
	if err := c.deps.History.Record(ctx, rec); err != nil {
		c.logger.Warn("record cycle history",
			slog.String("cycle_id", snap.CycleID),
			slog.String("error", err.Error()),
		)
	}
}

// alert forwards an operator notification when an alerter is wired. Delivery
// failures are logged only.
func (c *Cycle) alert(ctx context.Context, event, title, message string) {
	if c.deps.Alerts == nil {
		return
	}
	if err := c.deps.Alerts.Notify(ctx, event, title, message); err != nil {
		c.logger.Warn("alert delivery failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// archive uploads the snapshot to cold storage when an archiver is wired.
func (c *Cycle) archive(ctx context.Context, snap domain.Snapshot) {
	if c.deps.Archiver == nil {
		return
	}
	if err := c.deps.Archiver.ArchiveSnapshot(ctx, snap); err != nil {
		c.logger.Warn("archive snapshot",
			slog.String("cycle_id", snap.CycleID),
			slog.String("error", err.Error()),
		)
	}
}
