package export

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/libcert/pkg/config"
)

// newTestPGSink connects to LIBCERT_TEST_POSTGRES_URL or skips.
func newTestPGSink(t *testing.T, batchSize int) *PGSink {
	t.Helper()
	url := os.Getenv("LIBCERT_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("LIBCERT_TEST_POSTGRES_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sink, err := NewPGSink(ctx, config.PostgresConfig{URL: url, MaxConns: 2, BatchSize: batchSize})
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestPGSink_WritePoints(t *testing.T) {
	sink := newTestPGSink(t, 3)
	ctx := context.Background()
	run := NewRun("variation")
	t.Cleanup(func() { _ = sink.DeleteRun(context.Background(), run.ID) })

	n, err := sink.WritePoints(ctx, run, "a.lib", testModel(t), 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)

	n, err = sink.WritePoints(ctx, run, "b.lib", testModel(t), 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)

	count, err := sink.CountPoints(ctx, run.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 20, count)

	require.NoError(t, sink.DeleteRun(ctx, run.ID))
	count, err = sink.CountPoints(ctx, run.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewPGSink_BadURL(t *testing.T) {
	_, err := NewPGSink(context.Background(), config.PostgresConfig{URL: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database URL")
}

// fakeCopier counts copied rows and fails the call numbered failOn.
type fakeCopier struct {
	failOn  int
	calls   int
	batches []int
}

func (f *fakeCopier) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, rows pgx.CopyFromSource) (int64, error) {
	f.calls++
	if f.calls == f.failOn {
		return 0, errors.New("connection reset")
	}
	var n int
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return 0, err
		}
		if len(values) != len(columns) {
			return 0, errors.New("column count mismatch")
		}
		n++
	}
	f.batches = append(f.batches, n)
	return int64(n), nil
}

func TestCopyPoints_Batches(t *testing.T) {
	dst := &fakeCopier{}
	n, err := copyPoints(context.Background(), dst, 3, NewRun("variation"), "a.lib", testModel(t), 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)
	assert.Equal(t, []int{3, 3, 3, 1}, dst.batches)
}

func TestCopyPoints_LaterBatchFailureCountsNothing(t *testing.T) {
	dst := &fakeCopier{failOn: 2}
	n, err := copyPoints(context.Background(), dst, 3, NewRun("variation"), "a.lib", testModel(t), 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy table points")
	assert.Zero(t, n)
	assert.Equal(t, []int{3}, dst.batches)
}

func TestCopyPoints_FinalFlushFailureCountsNothing(t *testing.T) {
	dst := &fakeCopier{failOn: 4}
	n, err := copyPoints(context.Background(), dst, 3, NewRun("variation"), "a.lib", testModel(t), 1000)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []int{3, 3, 3}, dst.batches)
}
