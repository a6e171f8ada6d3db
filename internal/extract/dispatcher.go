package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/docmeta/constants"
	"github.com/joseph-ayodele/docmeta/internal/common"
)

// Extractor reads one document format.
type Extractor interface {
	Format() constants.Format
	Extract(ctx context.Context, path string) (Metadata, error)
}

// Observer is notified after every dispatch. The metrics package implements it.
type Observer interface {
	ObserveExtraction(format constants.Format, ok bool, elapsed time.Duration)
}

// Config tunes the built-in extractors.
type Config struct {
	PreviewChars int // text preview length for PDF and Word; default constants.PreviewChars
}

// Dispatcher maps file extensions to extractors.
type Dispatcher struct {
	extractors map[string]Extractor
	observer   Observer
	logger     *slog.Logger
}

type Option func(*Dispatcher)

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// WithExtractor registers (or replaces) the extractor for ext.
func WithExtractor(ext string, e Extractor) Option {
	return func(d *Dispatcher) {
		d.Register(ext, e)
	}
}

// NewDispatcher returns a Dispatcher with every built-in extractor registered.
func NewDispatcher(cfg Config, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = constants.PreviewChars
	}
	d := &Dispatcher{
		extractors: make(map[string]Extractor),
		logger:     logger,
	}
	for ext, format := range constants.SupportedExtensions {
		if e := builtin(format, cfg, logger); e != nil {
			d.extractors[ext] = e
		}
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func builtin(format constants.Format, cfg Config, logger *slog.Logger) Extractor {
	switch format {
	case constants.PDF:
		return &PDFExtractor{PreviewChars: cfg.PreviewChars}
	case constants.Word:
		return &DOCXExtractor{PreviewChars: cfg.PreviewChars}
	case constants.Excel:
		return &XLSXExtractor{logger: logger}
	case constants.PowerPoint:
		return &PPTXExtractor{}
	case constants.Image:
		return &ImageExtractor{logger: logger}
	case constants.Email:
		return &EMLExtractor{}
	case constants.Mailbox:
		return &MBOXExtractor{logger: logger}
	case constants.CSV:
		return &CSVExtractor{}
	default:
		return nil
	}
}

// Register installs e for ext (with or without the dot, any case).
func (d *Dispatcher) Register(ext string, e Extractor) {
	d.extractors[constants.NormalizeExt(ext)] = e
}

// Supported lists the registered extensions, sorted, with leading dots.
func (d *Dispatcher) Supported() []string {
	out := make([]string, 0, len(d.extractors))
	for ext := range d.extractors {
		out = append(out, "."+ext)
	}
	sort.Strings(out)
	return out
}

// Extract resolves the extractor for path and runs it. It never panics; every
// failure ends up in Result.Err.
func (d *Dispatcher) Extract(ctx context.Context, path string) Result {
	start := time.Now()
	ext := strings.ToLower(filepath.Ext(path))
	res := Result{Path: path}
	logger := d.logger.With("source", common.SourceFromContext(ctx), "job_id", common.JobIDFromContext(ctx))

	e, ok := d.extractors[constants.NormalizeExt(ext)]
	if !ok {
		res.Err = &UnsupportedError{Ext: ext}
		res.Duration = time.Since(start)
		logger.Warn("unsupported file type", "path", path, "extension", ext)
		d.observe(res)
		return res
	}

	res.Format = e.Format()
	logger.Debug("starting metadata extraction", "path", path, "format", res.Format)

	md, err := guard(res.Format, path, func() (Metadata, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return e.Extract(ctx, path)
	})
	if err != nil {
		res.Err = err
		logger.Error("metadata extraction failed", "path", path, "format", res.Format, "error", err)
	} else {
		res.Metadata = md
		logger.Info("metadata extracted", "path", path, "format", res.Format, "fields", len(md))
	}
	res.Duration = time.Since(start)
	d.observe(res)
	return res
}

func (d *Dispatcher) observe(res Result) {
	if d.observer != nil {
		d.observer.ObserveExtraction(res.Format, res.OK(), res.Duration)
	}
}
