package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/libcert/pkg/config"
	"github.com/dd0wney/libcert/pkg/liberty"
)

// defaultBatchSize is the number of points per COPY when none is configured.
const defaultBatchSize = 1000

var pointColumns = []string{
	"run_id", "source", "cell", "pin", "related_pin", "timing_type", "when_cond",
	"sense", "table_type", "sigma_type", "row_idx", "col_idx", "index_1", "index_2", "value",
}

// PGSink stores table points in PostgreSQL keyed by run id.
type PGSink struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewPGSink connects to the configured database and creates the schema.
func NewPGSink(ctx context.Context, cfg config.PostgresConfig) (*PGSink, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	s := &PGSink{pool: pool, batchSize: batchSize}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

func (s *PGSink) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS libcert_runs (
		id TEXT PRIMARY KEY,
		dialect TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS table_points (
		run_id TEXT NOT NULL REFERENCES libcert_runs(id) ON DELETE CASCADE,
		source TEXT NOT NULL,
		cell TEXT NOT NULL,
		pin TEXT NOT NULL,
		related_pin TEXT NOT NULL,
		timing_type TEXT NOT NULL,
		when_cond TEXT NOT NULL,
		sense TEXT NOT NULL,
		table_type TEXT NOT NULL,
		sigma_type TEXT NOT NULL,
		row_idx INTEGER NOT NULL,
		col_idx INTEGER NOT NULL,
		index_1 TEXT NOT NULL,
		index_2 TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_table_points_run ON table_points(run_id);
	CREATE INDEX IF NOT EXISTS idx_table_points_arc ON table_points(run_id, cell, pin, related_pin, table_type);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// WritePoints records the run and copies every point of m into
// table_points in one transaction. It returns the number of rows copied.
func (s *PGSink) WritePoints(ctx context.Context, run Run, source string, m *liberty.LibraryModel, scale float64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO libcert_runs (id, dialect, created_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		run.ID, run.Dialect, run.StartedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	total, err := copyPoints(ctx, tx, s.batchSize, run, source, m, scale)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit table points: %w", err)
	}
	return total, nil
}

// pointCopier is the bulk-load half of pgx.Tx.
type pointCopier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// copyPoints streams the model's points into table_points in batches of
// batchSize rows. On error the count is zero since the caller rolls back.
func copyPoints(ctx context.Context, dst pointCopier, batchSize int, run Run, source string, m *liberty.LibraryModel, scale float64) (int64, error) {
	var total int64
	batch := make([][]any, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := dst.CopyFrom(ctx, pgx.Identifier{"table_points"}, pointColumns, pgx.CopyFromRows(batch))
		if err != nil {
			return fmt.Errorf("failed to copy table points: %w", err)
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for p := range Points(m, scale) {
		batch = append(batch, []any{
			run.ID, source, p.Cell, p.Pin, p.RelatedPin, p.TimingType, p.When,
			p.Sense, p.TableType, p.Sigma, p.Row, p.Col, p.Index1, p.Index2, p.Value,
		})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}

// CountPoints returns the number of points stored for a run.
func (s *PGSink) CountPoints(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM table_points WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count table points: %w", err)
	}
	return n, nil
}

// DeleteRun removes a run and its points.
func (s *PGSink) DeleteRun(ctx context.Context, runID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM libcert_runs WHERE id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PGSink) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PGSink) Close() error {
	s.pool.Close()
	return nil
}
