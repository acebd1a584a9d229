package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alanyoungcy/retailboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// snapshotKey is the fixed key holding the latest dashboard snapshot. Each
// poll cycle overwrites it wholesale; readers always see a complete snapshot.
const snapshotKey = "snapshot:latest"

// SnapshotCache implements domain.SnapshotCache using a single Redis string
// key with a JSON-serialized Snapshot. No TTL is set: a stale snapshot is
// better than none, and the pipeline refreshes it every cycle.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

// SetLatest replaces the stored snapshot.
func (sc *SnapshotCache) SetLatest(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot %s: %w", snap.CycleID, err)
	}
	if err := sc.rdb.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", snap.CycleID, err)
	}
	return nil
}

// GetLatest retrieves the most recently stored snapshot.
// It returns domain.ErrNoSnapshot when no cycle has completed yet.
func (sc *SnapshotCache) GetLatest(ctx context.Context) (domain.Snapshot, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Snapshot{}, domain.ErrNoSnapshot
		}
		return domain.Snapshot{}, fmt.Errorf("redis: get snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
