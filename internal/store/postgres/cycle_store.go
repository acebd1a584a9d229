package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// CycleStore implements domain.CycleStore using PostgreSQL. It records one
// row per completed poll cycle; the bucket counts are stored as JSONB keyed
// by retailer name.
type CycleStore struct {
	pool *pgxpool.Pool
}

// NewCycleStore creates a new CycleStore backed by the given connection pool.
func NewCycleStore(pool *pgxpool.Pool) *CycleStore {
	return &CycleStore{pool: pool}
}

// Record persists the summary of a completed cycle. Re-recording the same
// cycle ID is a no-op via ON CONFLICT DO NOTHING.
func (s *CycleStore) Record(ctx context.Context, rec domain.CycleRecord) error {
	counts, err := json.Marshal(rec.BucketCounts)
	if err != nil {
		return fmt.Errorf("postgres: marshal bucket counts for cycle %s: %w", rec.CycleID, err)
	}

	const query = `
		INSERT INTO cycles (cycle_id, fetched_at, bucket_counts, source_total, source_failed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cycle_id) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query,
		rec.CycleID, rec.FetchedAt, counts, rec.SourceTotal, rec.SourceFailed,
	); err != nil {
		return fmt.Errorf("postgres: record cycle %s: %w", rec.CycleID, err)
	}
	return nil
}

// ListRecent returns cycle records ordered by fetch time, newest first.
func (s *CycleStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.CycleRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	const query = `
		SELECT cycle_id, fetched_at, bucket_counts, source_total, source_failed
		FROM cycles
		ORDER BY fetched_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list cycles: %w", err)
	}
	defer rows.Close()

	records, err := scanCycleRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: list cycles: %w", err)
	}
	return records, nil
}

func scanCycleRows(rows pgx.Rows) ([]domain.CycleRecord, error) {
	var records []domain.CycleRecord
	for rows.Next() {
		var (
			rec    domain.CycleRecord
			counts []byte
		)
		if err := rows.Scan(
			&rec.CycleID, &rec.FetchedAt, &counts,
			&rec.SourceTotal, &rec.SourceFailed,
		); err != nil {
			return nil, err
		}
		if len(counts) > 0 {
			if err := json.Unmarshal(counts, &rec.BucketCounts); err != nil {
				return nil, fmt.Errorf("unmarshal bucket counts for cycle %s: %w", rec.CycleID, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Compile-time interface check.
var _ domain.CycleStore = (*CycleStore)(nil)
