package parallel

import (
	"context"
	"errors"
	"time"

	"github.com/dd0wney/libcert/pkg/liberty"
	"github.com/dd0wney/libcert/pkg/logging"
	"github.com/dd0wney/libcert/pkg/metrics"
)

// FileResult is the outcome of parsing one file of a batch. Exactly one of
// Result and Err is set.
type FileResult struct {
	Path   string
	Result *liberty.Result
	Err    error
}

// BatchResult holds one FileResult per input file, in input order.
type BatchResult []FileResult

// Succeeded returns the number of files that produced a model.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, r := range b {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Err joins the errors of every failed file, or returns nil.
func (b BatchResult) Err() error {
	var errs []error
	for _, r := range b {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

// BatchOptions configures ParseBatch.
type BatchOptions struct {
	Workers int               // <= 0 selects one worker
	Logger  logging.Logger    // nil discards log output
	Metrics *metrics.Registry // nil records nothing
}

// ParseBatch parses every file with one worker per file, at most
// opts.Workers at a time. A failed file does not affect the others. Once ctx
// is cancelled, files not yet started fail with the context error.
func ParseBatch(ctx context.Context, parser *liberty.Parser, files []string, opts BatchOptions) (BatchResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	pool, err := NewWorkerPool(opts.Workers, WithLogger(logger))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make(BatchResult, len(files))
	for i, path := range files {
		results[i].Path = path
		slot := &results[i]
		pool.Submit(func() {
			// a panicking parse still reports a failure for its file
			slot.Err = errors.New("parse aborted")
			slot.Result, slot.Err = parseOne(ctx, parser, slot.Path, logger, opts.Metrics)
		})
	}
	pool.Wait()

	if opts.Metrics != nil {
		opts.Metrics.RecordBatch(time.Since(start))
	}
	logger.Info("batch parsed",
		logging.Count(len(files)),
		logging.Int("succeeded", results.Succeeded()),
		logging.Latency(time.Since(start)))
	return results, nil
}

func parseOne(ctx context.Context, parser *liberty.Parser, path string, logger logging.Logger, m *metrics.Registry) (*liberty.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, liberty.NewError("parse").File(path).Cause(err).Err()
	}
	if m != nil {
		defer m.BeginFile()()
	}

	timer := logging.StartTimer(logger, "file parsed", logging.File(path))
	res, err := parser.ParseFile(ctx, path)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(
		logging.Int("tables", res.Stats.TablesExtracted),
		logging.Int("skipped", res.Stats.Skipped()),
		logging.Int("duplicates", res.Stats.Duplicates))
	return res, nil
}
