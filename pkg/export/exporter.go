package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/libcert/pkg/config"
	"github.com/dd0wney/libcert/pkg/liberty"
	"github.com/dd0wney/libcert/pkg/logging"
	"github.com/dd0wney/libcert/pkg/metrics"
	"github.com/dd0wney/libcert/pkg/parallel"
)

// SnapshotExt is the file extension of model snapshots.
const SnapshotExt = ".lcs"

// Sink names used in logs and metrics.
const (
	SinkCSV      = "csv"
	SinkSnapshot = "snapshot"
	SinkPostgres = "postgres"
	SinkS3       = "s3"
)

// Run identifies one export.
type Run struct {
	ID        string
	Dialect   string
	StartedAt time.Time
}

// NewRun starts a run with a fresh id.
func NewRun(dialect string) Run {
	return Run{ID: uuid.New().String(), Dialect: dialect, StartedAt: time.Now().UTC()}
}

// PointStore persists table points. PGSink implements it.
type PointStore interface {
	WritePoints(ctx context.Context, run Run, source string, m *liberty.LibraryModel, scale float64) (int64, error)
}

// Publisher uploads a local artifact. S3Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, runID, localPath string) (string, int64, error)
}

// Options configures an Exporter.
type Options struct {
	Config    config.ExportConfig
	Scale     float64           // 0 selects config.DefaultScale
	Logger    logging.Logger    // nil discards log output
	Metrics   *metrics.Registry // nil records nothing
	Store     PointStore        // nil disables the point store
	Publisher Publisher         // nil disables uploads
}

// Exporter writes successfully parsed files to every configured sink.
type Exporter struct {
	cfg       config.ExportConfig
	scale     float64
	logger    logging.Logger
	metrics   *metrics.Registry
	store     PointStore
	publisher Publisher
}

// NewExporter creates an exporter.
func NewExporter(opts Options) *Exporter {
	scale := opts.Scale
	if scale == 0 {
		scale = config.DefaultScale
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Exporter{
		cfg:       opts.Config,
		scale:     scale,
		logger:    logger,
		metrics:   opts.Metrics,
		store:     opts.Store,
		publisher: opts.Publisher,
	}
}

// Report summarises an export.
type Report struct {
	Run       Run
	Sources   int
	Rows      map[string]int64 // rows written per sink
	Artifacts []string         // local files produced
	Uploaded  []string         // object keys
}

// Export writes every successful file of batch. A failing sink does not
// stop the others; all sink errors are joined into the returned error.
func (e *Exporter) Export(ctx context.Context, run Run, batch parallel.BatchResult) (Report, error) {
	report := Report{Run: run, Rows: make(map[string]int64)}
	log := e.logger.With(logging.RunID(run.ID))

	var sources []parallel.FileResult
	for _, r := range batch {
		if r.Err == nil && r.Result != nil {
			sources = append(sources, r)
		}
	}
	report.Sources = len(sources)

	var errs []error
	if e.cfg.CSV != "" {
		if err := e.exportCSV(&report, sources, log); err != nil {
			errs = append(errs, err)
		}
	}
	if e.cfg.SnapshotDir != "" {
		if err := e.exportSnapshots(&report, sources, log); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.exportPoints(ctx, &report, sources, log); err != nil {
			errs = append(errs, err)
		}
	}
	if e.publisher != nil && len(report.Artifacts) > 0 {
		if err := e.publish(ctx, &report, log); err != nil {
			errs = append(errs, err)
		}
	}

	return report, errors.Join(errs...)
}

func (e *Exporter) exportCSV(report *Report, sources []parallel.FileResult, log logging.Logger) (retErr error) {
	timer := logging.StartTimer(log, "csv export", logging.Sink(SinkCSV), logging.File(e.cfg.CSV))
	start := time.Now()
	var rows, size int64
	defer func() {
		e.record(SinkCSV, rows, size, time.Since(start), retErr)
		if retErr != nil {
			timer.EndError(retErr)
			return
		}
		timer.End(logging.Count(int(rows)))
	}()

	if err := os.MkdirAll(filepath.Dir(e.cfg.CSV), 0o755); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	f, err := os.Create(e.cfg.CSV)
	if err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("csv export: %w", err)
		}
	}()

	cw := NewCSVWriter(f)
	for _, src := range sources {
		n, err := cw.Write(src.Path, src.Result.Model, e.scale)
		rows += n
		if err != nil {
			return fmt.Errorf("csv export: %s: %w", src.Path, err)
		}
	}
	if err := cw.Flush(); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	report.Rows[SinkCSV] = rows
	report.Artifacts = append(report.Artifacts, e.cfg.CSV)
	return nil
}

func (e *Exporter) exportSnapshots(report *Report, sources []parallel.FileResult, log logging.Logger) error {
	if err := os.MkdirAll(e.cfg.SnapshotDir, 0o755); err != nil {
		return fmt.Errorf("snapshot export: %w", err)
	}

	names := make(map[string]int)
	var errs []error
	for _, src := range sources {
		path := filepath.Join(e.cfg.SnapshotDir, snapshotName(src.Path, names))
		start := time.Now()
		size, err := e.writeSnapshot(path, report.Run, src)
		tables := int64(src.Result.Model.Len())
		e.record(SinkSnapshot, tables, size, time.Since(start), err)
		if err != nil {
			log.Error("snapshot export failed", logging.Sink(SinkSnapshot), logging.File(src.Path), logging.Error(err))
			errs = append(errs, fmt.Errorf("snapshot export: %s: %w", src.Path, err))
			continue
		}
		log.Debug("snapshot written",
			logging.Sink(SinkSnapshot),
			logging.File(path),
			logging.Int64("bytes", size),
			logging.Latency(time.Since(start)))
		report.Rows[SinkSnapshot] += tables
		report.Artifacts = append(report.Artifacts, path)
	}
	return errors.Join(errs...)
}

func (e *Exporter) writeSnapshot(path string, run Run, src parallel.FileResult) (size int64, retErr error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	meta := SnapshotMeta{
		RunID:     run.ID,
		Source:    src.Path,
		Dialect:   run.Dialect,
		CreatedAt: run.StartedAt,
	}
	return WriteSnapshot(f, meta, src.Result.Model)
}

// snapshotName derives a unique snapshot file name from a source path.
func snapshotName(source string, seen map[string]int) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	seen[base]++
	if n := seen[base]; n > 1 {
		base += "-" + strconv.Itoa(n)
	}
	return base + SnapshotExt
}

func (e *Exporter) exportPoints(ctx context.Context, report *Report, sources []parallel.FileResult, log logging.Logger) error {
	var errs []error
	for _, src := range sources {
		start := time.Now()
		n, err := e.store.WritePoints(ctx, report.Run, src.Path, src.Result.Model, e.scale)
		e.record(SinkPostgres, n, 0, time.Since(start), err)
		if err != nil {
			log.Error("point store export failed", logging.Sink(SinkPostgres), logging.File(src.Path), logging.Error(err))
			errs = append(errs, fmt.Errorf("postgres export: %s: %w", src.Path, err))
			continue
		}
		log.Info("table points stored",
			logging.Sink(SinkPostgres),
			logging.File(src.Path),
			logging.Count(int(n)),
			logging.Latency(time.Since(start)))
		report.Rows[SinkPostgres] += n
	}
	return errors.Join(errs...)
}

func (e *Exporter) publish(ctx context.Context, report *Report, log logging.Logger) error {
	var errs []error
	for _, path := range report.Artifacts {
		start := time.Now()
		key, size, err := e.publisher.Publish(ctx, report.Run.ID, path)
		e.record(SinkS3, 1, size, time.Since(start), err)
		if err != nil {
			log.Error("artifact upload failed", logging.Sink(SinkS3), logging.File(path), logging.Error(err))
			errs = append(errs, fmt.Errorf("s3 export: %w", err))
			continue
		}
		log.Info("artifact uploaded", logging.Sink(SinkS3), logging.String("key", key), logging.Int64("bytes", size))
		report.Rows[SinkS3]++
		report.Uploaded = append(report.Uploaded, key)
	}
	return errors.Join(errs...)
}

func (e *Exporter) record(sink string, rows, bytes int64, d time.Duration, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordExport(sink, int(rows), bytes, d, err)
}
