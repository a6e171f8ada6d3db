package ingest

import (
	"context"
)

// IngestionResult is the per-file outcome of extracting and saving one document.
type IngestionResult struct {
	SourcePath string
	RecordID   int64
	Hash       string
	Duplicate  bool // an earlier record already carried the same hash
	Err        string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned    uint32
	Matched    uint32
	Succeeded  uint32
	Duplicates uint32
	Failed     uint32
}

// Ingestor extracts and persists a single file.
type Ingestor interface {
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
}
