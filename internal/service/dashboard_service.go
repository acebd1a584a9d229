// Package service implements the application use cases on top of the domain
// interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/retailboard/internal/aggregate"
	"github.com/alanyoungcy/retailboard/internal/domain"
	"github.com/alanyoungcy/retailboard/internal/series"
)

// defaultHistoryDays is how far back probability and stock series are
// fetched for the aligned-series view when no range is configured.
const defaultHistoryDays = 90

// ProbabilityHistory fetches the traded-probability history of an outcome
// token.
type ProbabilityHistory interface {
	GetPriceHistory(ctx context.Context, tokenID string, startTs, endTs int64) ([]domain.PricePoint, error)
}

// StockCandles fetches daily closing prices for a stock symbol.
type StockCandles interface {
	GetStockSeries(ctx context.Context, symbol string, from, to int64) ([]domain.PricePoint, error)
}

// DashboardService serves the read side of the dashboard: the latest
// snapshot, its per-retailer buckets, and market-vs-stock aligned series.
type DashboardService struct {
	snapshots   domain.SnapshotCache
	series      domain.SeriesCache
	probs       ProbabilityHistory
	stocks      StockCandles
	window      int64
	historyDays int
	logger      *slog.Logger
}

// NewDashboardService creates a DashboardService. windowSeconds is the
// default alignment window applied when a request does not override it, and
// historyDays is the series fetch range; zero selects the package defaults
// for either.
func NewDashboardService(
	snapshots domain.SnapshotCache,
	seriesCache domain.SeriesCache,
	probs ProbabilityHistory,
	stocks StockCandles,
	windowSeconds int64,
	historyDays int,
	logger *slog.Logger,
) *DashboardService {
	if windowSeconds <= 0 {
		windowSeconds = series.DefaultWindowSeconds
	}
	if historyDays <= 0 {
		historyDays = defaultHistoryDays
	}
	return &DashboardService{
		snapshots:   snapshots,
		series:      seriesCache,
		probs:       probs,
		stocks:      stocks,
		window:      windowSeconds,
		historyDays: historyDays,
		logger:      logger,
	}
}

// Latest returns the most recent snapshot.
// It returns domain.ErrNoSnapshot before the first cycle completes.
func (s *DashboardService) Latest(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.snapshots.GetLatest(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("dashboard_service: latest snapshot: %w", err)
	}
	return snap, nil
}

// Bucket returns the latest markets for one retailer.
// It returns domain.ErrNotFound for a retailer name that is not tracked.
func (s *DashboardService) Bucket(ctx context.Context, name string) ([]domain.Market, error) {
	retailer, ok := domain.ParseRetailer(name)
	if !ok {
		return nil, fmt.Errorf("dashboard_service: retailer %q: %w", name, domain.ErrNotFound)
	}

	snap, err := s.snapshots.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard_service: bucket %s: %w", retailer, err)
	}
	return snap.Buckets[retailer], nil
}

// EarningsBucket returns the earnings-related subset of a retailer's bucket.
func (s *DashboardService) EarningsBucket(ctx context.Context, name string) ([]domain.Market, error) {
	markets, err := s.Bucket(ctx, name)
	if err != nil {
		return nil, err
	}
	return aggregate.FilterEarnings(markets), nil
}

// AlignedSeries fetches the probability history of a market and the closing
// prices of a stock symbol, then aligns each probability point with the
// nearest stock point inside the window. windowSeconds of zero uses the
// service default.
func (s *DashboardService) AlignedSeries(ctx context.Context, marketID, symbol string, windowSeconds int64) (domain.AlignedSeries, error) {
	market, err := s.findMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if len(market.TokenIDs) == 0 {
		return nil, fmt.Errorf("dashboard_service: market %s has no outcome tokens: %w", marketID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -s.historyDays).Unix()
	to := now.Unix()

	// The first token is the YES outcome; its trade price is the market's
	// implied probability.
	probSeries, err := s.cachedSeries(ctx, "prob:"+market.TokenIDs[0], func(ctx context.Context) ([]domain.PricePoint, error) {
		return s.probs.GetPriceHistory(ctx, market.TokenIDs[0], from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard_service: probability history for %s: %w", marketID, err)
	}

	stockSeries, err := s.cachedSeries(ctx, "stock:"+symbol, func(ctx context.Context) ([]domain.PricePoint, error) {
		return s.stocks.GetStockSeries(ctx, symbol, from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard_service: stock series for %s: %w", symbol, err)
	}

	if windowSeconds <= 0 {
		windowSeconds = s.window
	}
	return series.Align(probSeries, stockSeries, windowSeconds), nil
}

// findMarket locates a market by ID in the latest snapshot.
func (s *DashboardService) findMarket(ctx context.Context, marketID string) (domain.Market, error) {
	snap, err := s.snapshots.GetLatest(ctx)
	if err != nil {
		return domain.Market{}, fmt.Errorf("dashboard_service: find market %s: %w", marketID, err)
	}
	for _, bucket := range snap.Buckets {
		for _, m := range bucket {
			if m.ID == marketID {
				return m, nil
			}
		}
	}
	return domain.Market{}, fmt.Errorf("dashboard_service: market %s: %w", marketID, domain.ErrNotFound)
}

// cachedSeries reads a series from the cache, falling back to fetch on a
// miss. Cache errors degrade to a direct fetch; a cache write failure is
// logged but does not fail the request.
func (s *DashboardService) cachedSeries(ctx context.Context, key string, fetch func(context.Context) ([]domain.PricePoint, error)) ([]domain.PricePoint, error) {
	if points, err := s.series.Get(ctx, key); err == nil {
		return points, nil
	}

	points, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.series.Set(ctx, key, points); err != nil {
		s.logger.WarnContext(ctx, "dashboard_service: series cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return points, nil
}
