package domain

import (
	"context"
	"time"
)

// CycleRecord is the persisted summary of one completed fetch cycle. The core
// pipeline only ever writes these; it never reads them back into a later
// cycle, so classification stays a pure function of each cycle's fetched
// inputs.
type CycleRecord struct {
	CycleID      string
	FetchedAt    time.Time
	BucketCounts map[Retailer]int
	SourceTotal  int
	SourceFailed int
}

// ListOpts holds standard pagination parameters.
type ListOpts struct {
	Limit  int
	Offset int
}

// CycleStore persists cycle summaries for the dashboard's trend view.
type CycleStore interface {
	Record(ctx context.Context, rec CycleRecord) error
	ListRecent(ctx context.Context, opts ListOpts) ([]CycleRecord, error)
}
