package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docmeta/internal/common"
)

// ScanOptions controls which files ScanDirectory hands to the ingestor.
type ScanOptions struct {
	SkipHidden bool
}

// ScanDirectory walks root and ingests every file with a supported extension,
// one at a time. Per-file failures are recorded and the walk continues; a
// canceled ctx, a storage failure or an unreadable root stops it.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions, ing Ingestor, logger *slog.Logger) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Scanned++
			stats.Failed++
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			return nil
		}
		if path != root && opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := ing.IngestPath(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, common.ErrDatabase) {
				return err
			}
			stats.Failed++
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			return nil
		}
		results = append(results, r)
		if r.Err != "" {
			stats.Failed++
			return nil
		}
		stats.Succeeded++
		if r.Duplicate {
			stats.Duplicates++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("directory scan completed", "root", root, "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "duplicates", stats.Duplicates, "failed", stats.Failed)
	return results, stats, nil
}
