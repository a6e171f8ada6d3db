package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/docmeta/internal/async"
	"github.com/joseph-ayodele/docmeta/internal/common"
	"github.com/joseph-ayodele/docmeta/internal/entity"
	"github.com/joseph-ayodele/docmeta/internal/export"
	"github.com/joseph-ayodele/docmeta/internal/hash"
	"github.com/joseph-ayodele/docmeta/internal/ingest"
	"github.com/joseph-ayodele/docmeta/internal/integrity"
	"github.com/joseph-ayodele/docmeta/internal/repository"
)

// Recorder receives persistence events. The metrics package implements it.
type Recorder interface {
	RecordSaved(duplicate bool)
	RecordVerified(checked, failed int)
}

// Service ties extraction, hashing and persistence together for the front-end commands.
type Service struct {
	worker   *async.Worker
	repo     repository.RecordRepository
	verifier *integrity.Verifier
	exporter *export.Service
	recorder Recorder
	logger   *slog.Logger
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a new catalog service.
func NewService(worker *async.Worker, repo repository.RecordRepository, verifier *integrity.Verifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		worker:   worker,
		repo:     repo,
		verifier: verifier,
		exporter: export.NewService(repo, logger),
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SaveResult describes a stored record and any earlier records with identical metadata.
type SaveResult struct {
	ID         int64
	Hash       string
	Duplicates []entity.Record
}

// Extract runs one extraction on the worker. It fails with async.ErrBusy while
// another extraction is still running.
func (s *Service) Extract(ctx context.Context, path string) (async.Outcome, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return async.Outcome{}, common.NewAppError("INVALID_INPUT", "path is required", common.ErrInvalidInput)
	}
	return s.worker.Run(ctx, path)
}

// Save persists metadata for path. The hash is recomputed from metadata here so
// the stored hash always matches the stored content.
func (s *Service) Save(ctx context.Context, path string, metadata map[string]any) (SaveResult, error) {
	if strings.TrimSpace(path) == "" {
		return SaveResult{}, common.NewAppError("INVALID_INPUT", "path is required", common.ErrInvalidInput)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	sum := hash.Sum(metadata)

	prior, err := s.repo.ListByHash(ctx, sum)
	if err != nil {
		return SaveResult{}, err
	}
	id, err := s.repo.Save(ctx, path, metadata, sum)
	if err != nil {
		return SaveResult{}, err
	}
	if s.recorder != nil {
		s.recorder.RecordSaved(len(prior) > 0)
	}
	if len(prior) > 0 {
		s.logger.Info("saved metadata matches earlier records", "id", id, "hash", sum, "duplicates", len(prior))
	} else {
		s.logger.Info("metadata saved", "id", id, "path", path, "hash", sum)
	}
	return SaveResult{ID: id, Hash: sum, Duplicates: prior}, nil
}

// IngestPath extracts path and saves the result when extraction succeeded.
// Failed extractions are reported in the result and not stored.
func (s *Service) IngestPath(ctx context.Context, path string) (ingest.IngestionResult, error) {
	out, err := s.Extract(ctx, path)
	if err != nil {
		return ingest.IngestionResult{}, err
	}
	r := ingest.IngestionResult{SourcePath: path, Hash: out.Hash}
	if !out.Result.OK() {
		r.Err = out.Result.Err.Error()
		return r, nil
	}
	saved, err := s.Save(ctx, path, out.Result.Metadata)
	if err != nil {
		return ingest.IngestionResult{}, err
	}
	r.RecordID = saved.ID
	r.Duplicate = len(saved.Duplicates) > 0
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]entity.Record, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Show(ctx context.Context, id int64) (*entity.Record, error) {
	return s.repo.GetByID(ctx, id)
}

// Verify re-checks every stored record. A report with findings is not an error;
// callers decide via Report.Err.
func (s *Service) Verify(ctx context.Context) (integrity.Report, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return integrity.Report{}, common.WrapError(err, "list records for verification")
	}
	report := s.verifier.Verify(records)
	if s.recorder != nil {
		s.recorder.RecordVerified(report.Checked, len(report.Findings))
	}
	return report, nil
}

// Scan ingests every supported file under root.
func (s *Service) Scan(ctx context.Context, root string, skipHidden bool) ([]ingest.IngestionResult, ingest.DirStats, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ingest.DirStats{}, common.NewAppError("INVALID_INPUT", "root path is required", common.ErrInvalidInput)
	}
	s.logger.Info("starting directory scan", "root", root, "skip_hidden", skipHidden)
	return ingest.ScanDirectory(ctx, root, ingest.ScanOptions{SkipHidden: skipHidden}, s, s.logger)
}

// Export renders every record as an XLSX workbook.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	data, err := s.exporter.ExportRecordsXLSX(ctx)
	if err != nil {
		return nil, common.WrapError(err, "export records")
	}
	return data, nil
}
