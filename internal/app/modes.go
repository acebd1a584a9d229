package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/retailboard/internal/aggregate"
	"github.com/alanyoungcy/retailboard/internal/classify"
	"github.com/alanyoungcy/retailboard/internal/pipeline"
	"github.com/alanyoungcy/retailboard/internal/server"
	"github.com/alanyoungcy/retailboard/internal/server/handler"
	"github.com/alanyoungcy/retailboard/internal/server/ws"
	"github.com/alanyoungcy/retailboard/internal/service"
)

// shutdownTimeout bounds how long the HTTP server waits for in-flight
// requests when the context is cancelled.
const shutdownTimeout = 10 * time.Second

// ServeMode runs the full stack: the poll cycle, the HTTP API, and the
// WebSocket hub.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "entering serve mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.buildCycle(deps).RunLoop(ctx, a.cfg.Pipeline.PollInterval.Duration)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return err
	})

	a.startHTTPServer(ctx, g, deps, true)

	return waitGroup(g)
}

// PollMode runs only the poll cycle. Snapshots land in the cache for a
// separate server-mode process to read.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "entering poll mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.buildCycle(deps).RunLoop(ctx, a.cfg.Pipeline.PollInterval.Duration)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	return waitGroup(g)
}

// ServerMode runs only the HTTP API and WebSocket hub, serving whatever
// snapshot a poll-mode process has cached.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "entering server mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startHTTPServer(ctx, g, deps, true)

	return waitGroup(g)
}

// buildCycle assembles the poll cycle from the wired dependencies.
func (a *App) buildCycle(deps *Dependencies) *pipeline.Cycle {
	agg := aggregate.New(classify.DefaultRuleSet(), a.logger)

	return pipeline.NewCycle(
		pipeline.Deps{
			Gamma:      deps.Gamma,
			Aggregator: agg,
			Snapshots:  deps.Snapshots,
			Signals:    deps.Signals,
			History:    deps.History,
			Archiver:   deps.Archiver,
			Alerts:     deps.Notifier,
		},
		pipeline.Config{
			EventTags:      a.cfg.Pipeline.EventTags,
			SearchQueries:  a.cfg.Pipeline.SearchQueries,
			MarketPageSize: a.cfg.Pipeline.MarketPageSize,
		},
		a.logger,
	)
}

// startHTTPServer adds the HTTP server (and optionally the WebSocket hub) to
// the given errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, withHub bool) {
	dashboardSvc := service.NewDashboardService(
		deps.Snapshots,
		deps.Series,
		deps.Clob,
		deps.Stocks,
		a.cfg.Dashboard.AlignWindowSeconds,
		a.cfg.Dashboard.HistoryDays,
		a.logger,
	)

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Dashboard: handler.NewDashboardHandler(dashboardSvc, a.logger),
	}
	if deps.History != nil {
		handlers.History = handler.NewHistoryHandler(service.NewHistoryService(deps.History), a.logger)
	}

	var hub *ws.Hub
	if withHub {
		hub = ws.NewHub(deps.Signals, pipeline.SnapshotChannel, a.logger)
		g.Go(func() error {
			err := hub.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http shutdown failed", slog.String("error", err.Error()))
		}
		return nil
	})
}

// waitGroup waits for the errgroup and treats context cancellation as a
// clean shutdown.
func waitGroup(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
