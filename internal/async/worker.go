package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docmeta/internal/common"
	"github.com/joseph-ayodele/docmeta/internal/extract"
	"github.com/joseph-ayodele/docmeta/internal/hash"
)

var (
	// ErrBusy is returned by Submit while the worker has no free slot.
	ErrBusy   = errors.New("an extraction is already in progress")
	ErrClosed = errors.New("worker is shut down")
)

// Extractor is the part of extract.Dispatcher the worker needs.
type Extractor interface {
	Extract(ctx context.Context, path string) extract.Result
}

type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
}

// Outcome is delivered exactly once per submitted job.
type Outcome struct {
	Job    Job
	Result extract.Result
	Hash   string
}

type request struct {
	ctx context.Context
	job Job
	out chan Outcome
}

// Worker runs extractions one at a time off the caller's goroutine.
type Worker struct {
	extractor Extractor
	logger    *slog.Logger
	backlog   int

	ch   chan request
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	pending int
	closed  bool
}

type Option func(*Worker)

// WithBacklog lets up to n jobs wait behind the running one instead of failing with ErrBusy.
func WithBacklog(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.backlog = n
		}
	}
}

// Backlog is how many jobs may wait behind the running one.
func (w *Worker) Backlog() int { return w.backlog }

func NewWorker(ex Extractor, logger *slog.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		extractor: ex,
		logger:    logger,
	}
	for _, o := range opts {
		o(w)
	}
	w.ch = make(chan request, w.backlog+1)
	w.start()
	return w
}

func (w *Worker) start() {
	w.once.Do(func() {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.logger.Debug("extraction worker started")
			for req := range w.ch {
				w.run(req)
			}
			w.logger.Debug("extraction worker stopped")
		}()
	})
}

func (w *Worker) run(req request) {
	ctx := common.WithJobID(req.ctx, req.job.ID.String())
	res := w.extractor.Extract(ctx, req.job.Path)
	outcome := Outcome{
		Job:    req.job,
		Result: res,
		Hash:   hash.Sum(res.Fields()),
	}
	if res.OK() {
		w.logger.Info("job completed", "job_id", req.job.ID, "source", common.SourceFromContext(ctx), "path", req.job.Path, "hash", outcome.Hash, "duration", res.Duration)
	} else {
		w.logger.Warn("job completed with error", "job_id", req.job.ID, "source", common.SourceFromContext(ctx), "path", req.job.Path, "error", res.Err)
	}

	// free the slot before delivery so a caller can resubmit right after receiving
	w.mu.Lock()
	w.pending--
	w.mu.Unlock()

	req.out <- outcome
	close(req.out)
}

// Submit schedules an extraction of path. The returned channel yields one Outcome
// and is then closed.
func (w *Worker) Submit(ctx context.Context, path string) (<-chan Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Warn("cannot submit: worker is shutting down", "path", path)
		return nil, ErrClosed
	}
	if w.pending > w.backlog {
		w.logger.Debug("worker busy, rejecting job", "path", path)
		return nil, ErrBusy
	}

	req := request{
		ctx: ctx,
		job: Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now()},
		out: make(chan Outcome, 1),
	}
	w.pending++
	w.ch <- req
	w.logger.Debug("queued file for extraction", "job_id", req.job.ID, "path", path)
	return req.out, nil
}

// Run submits path and waits for its outcome or for ctx to end.
func (w *Worker) Run(ctx context.Context, path string) (Outcome, error) {
	out, err := w.Submit(ctx, path)
	if err != nil {
		return Outcome{}, err
	}
	select {
	case o := <-out:
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Busy reports whether a job is running or queued.
func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending > 0
}

func (w *Worker) Shutdown(ctx context.Context) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); w.wg.Wait() }()

	select {
	case <-ctx.Done():
		w.logger.Warn("shutdown interrupted by context")
	case <-done:
		w.logger.Debug("worker drained, shutdown complete")
	}
}
