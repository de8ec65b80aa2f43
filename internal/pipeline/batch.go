package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/auditsheet/internal/model"
)

// BatchProcessor re-exports stored sheets, several at a time, for the
// rebuild command. An errgroup with a limit bounds the number of exports
// in flight.
//
// Design decision: a single Pipeline stays sequential and knows nothing
// about batches. Each stored sheet gets a fresh Pipeline from the factory,
// so no step carries state from one export into the next.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger replaces slog.Default() for batch progress lines.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConcurrency sets the maximum number of concurrent exports.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// DefaultConcurrency is the number of concurrent exports when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// NewBatchProcessor returns a BatchProcessor that builds one pipeline per
// sheet with pipelineFactory.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{pipelineFactory: pipelineFactory, concurrency: DefaultConcurrency, logger: slog.Default()}
	for _, opt := range opts {
		opt(bp)
	}
	return bp
}

// ProcessBatch re-exports the sheets and returns one job per sheet, in
// input order.
//
// A failed export does not stop the others; its error is recorded in the
// job's Err field. The returned error is non-nil only when the context was
// cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sheets []*model.Sheet) ([]*Job, error) {
	bp.logger.Info("starting batch export",
		"total_sheets", len(sheets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	jobs := make([]*Job, len(sheets))
	for i, sheet := range sheets {
		jobs[i] = NewRebuildJob(sheet)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				job.Err = err
				return err
			}

			bp.logger.Debug("exporting sheet",
				"audit_id", job.Sheet.ID,
				"index", i+1,
				"total", len(jobs),
			)

			if err := bp.pipelineFactory().Execute(gctx, job); err != nil {
				bp.logger.Warn("export failed",
					"audit_id", job.Sheet.ID,
					"error", err,
				)
				// Other sheets continue; the error is recorded in the job.
				return nil
			}

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Info("batch export complete",
		"total_sheets", len(sheets),
		"failed", countFailed(jobs),
		"elapsed", time.Since(startTime),
	)

	return jobs, err
}

func countFailed(jobs []*Job) int {
	n := 0
	for _, j := range jobs {
		if j.Err != nil {
			n++
		}
	}
	return n
}
