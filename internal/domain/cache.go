package domain

import "context"

// SnapshotCache stores the most recent cycle snapshot so the API layer can
// serve reads without waiting on a cycle.
type SnapshotCache interface {
	// SetLatest replaces the current snapshot.
	SetLatest(ctx context.Context, snap Snapshot) error
	// GetLatest returns the current snapshot or ErrNoSnapshot.
	GetLatest(ctx context.Context) (Snapshot, error)
}

// SeriesCache caches fetched time series (probability history and stock
// candles) keyed by an opaque string, with a TTL so upstream APIs are not hit
// on every chart request.
type SeriesCache interface {
	Set(ctx context.Context, key string, points []PricePoint) error
	// Get returns ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]PricePoint, error)
}

// SignalBus is a lightweight pub/sub channel used to notify connected
// dashboards that a new snapshot is available.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
