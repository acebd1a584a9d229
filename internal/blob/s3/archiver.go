package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// multipartThreshold is the payload size above which snapshot uploads switch
// to the multipart path. It matches the S3 minimum part size, so anything
// bigger than a single part goes through the concurrent uploader.
const multipartThreshold = 5 * 1024 * 1024

// Archiver uploads completed dashboard snapshots to an S3-compatible bucket,
// one JSON object per poll cycle. The archive is write-only from the app's
// point of view; it exists for offline analysis of how buckets evolved.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates a new Archiver that uploads through the given writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveSnapshot serializes the snapshot and uploads it to
// snapshots/YYYY/MM/DD/{cycleID}.json, partitioned by the snapshot's fetch
// date for easy listing by day.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("s3blob: marshal snapshot %s: %w", snap.CycleID, err)
	}

	path := snapshotPath(snap)
	if int64(len(data)) >= multipartThreshold {
		err = a.writer.PutMultipart(ctx, path, bytes.NewReader(data), multipartThreshold)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(data), "application/json")
	}
	if err != nil {
		return fmt.Errorf("s3blob: archive snapshot %s: %w", snap.CycleID, err)
	}
	return nil
}

// snapshotPath builds the S3 key for an archived snapshot.
//
//	snapshots/2026/08/30/9f1c2d3e-....json
func snapshotPath(snap domain.Snapshot) string {
	return fmt.Sprintf("snapshots/%s/%s.json", snap.FetchedAt.UTC().Format("2006/01/02"), snap.CycleID)
}
