package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/libcert/pkg/liberty"
	"github.com/dd0wney/libcert/pkg/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "nominal", cfg.Dialect)
	assert.Equal(t, "all", cfg.Class)
	assert.Equal(t, 1e3, cfg.Scale)
	assert.Equal(t, liberty.Shape{Rows: 5, Cols: 5}, cfg.ShapeHints["constraint"])
	assert.False(t, cfg.Export.Postgres.Enabled())
	assert.False(t, cfg.Export.S3.Enabled())
}

func TestParse(t *testing.T) {
	data := []byte(`
dialect: Variation
class: constraint
files:
  - "corners/*.lib"
workers: 8
scale: 1000000
log_level: DEBUG
export:
  csv: out/points.csv
  snapshot_dir: out/snapshots
  postgres:
    url: postgres://cert:secret@db:5432/libcert
    batch_size: 500
  s3:
    bucket: qa-artifacts
    region: us-west-2
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "variation", cfg.Dialect)
	assert.Equal(t, "constraint", cfg.Class)
	assert.Equal(t, []string{"corners/*.lib"}, cfg.Files)
	assert.Equal(t, 8, cfg.EffectiveWorkers())
	assert.Equal(t, 1e6, cfg.Scale)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "out/points.csv", cfg.Export.CSV)
	assert.True(t, cfg.Export.Postgres.Enabled())
	assert.Equal(t, 500, cfg.Export.Postgres.BatchSize)
	assert.Equal(t, int32(4), cfg.Export.Postgres.MaxConns, "default kept")
	assert.True(t, cfg.Export.S3.Enabled())
	assert.Equal(t, "libcert", cfg.Export.S3.Prefix, "default kept")
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "dialekt: nominal\n"},
		{"bad dialect", "dialect: sensitivity\n"},
		{"bad class", "class: power\n"},
		{"bad scale", "scale: 0\n"},
		{"bad glob", "files: ['[']\n"},
		{"bad shape", "shape_hints:\n  delay: {rows: 0, cols: 8}\n"},
		{"oversized shape", "shape_hints:\n  slew: {rows: 8, cols: 500}\n"},
		{"unknown family", "shape_hints:\n  power: {rows: 8, cols: 8}\n"},
		{"s3 without region", "export:\n  s3:\n    bucket: b\n"},
		{"half credentials", "export:\n  s3:\n    bucket: b\n    region: r\n    access_key_id: AK\n"},
		{"absolute s3 prefix", "export:\n  s3:\n    bucket: b\n    region: r\n    prefix: /runs\n"},
		{"postgres scheme", "export:\n  postgres:\n    url: mysql://db/x\n"},
		{"not yaml", "dialect: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_AbsoluteS3Prefix(t *testing.T) {
	_, err := Parse([]byte("export:\n  s3:\n    bucket: b\n    region: r\n    prefix: /runs\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, liberty.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "export.s3.prefix: must be relative to the bucket root")

	_, err = Parse([]byte("export:\n  s3:\n    bucket: b\n    region: r\n    prefix: runs/nightly\n"))
	assert.NoError(t, err)
}

func TestParse_ValidationErrorsAreConfigurationErrors(t *testing.T) {
	_, err := Parse([]byte("dialect: sensitivity\n"))
	assert.True(t, errors.Is(err, liberty.ErrInvalidConfiguration))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libcert.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: variation\nworkers: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "variation", cfg.Dialect)
	assert.Equal(t, 2, cfg.Workers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParserOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dialect = "variation"
	cfg.Class = "slew"
	cfg.ShapeHints = map[string]liberty.Shape{"slew": {Rows: 7, Cols: 7}}

	opts, err := cfg.ParserOptions(logging.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, liberty.Variation, opts.Dialect)
	assert.Equal(t, liberty.ClassSlew, opts.Class)
	assert.Equal(t, liberty.ShapeHints{liberty.FamilySlew: {Rows: 7, Cols: 7}}, opts.ShapeHints)

	_, err = liberty.NewParser(opts)
	require.NoError(t, err)

	cfg.Dialect = "bogus"
	_, err = cfg.ParserOptions(nil, nil)
	assert.ErrorIs(t, err, liberty.ErrInvalidConfiguration)
}

func TestEffectiveWorkers(t *testing.T) {
	cfg := DefaultConfig()
	assert.GreaterOrEqual(t, cfg.EffectiveWorkers(), 1)

	cfg.Workers = 3
	assert.Equal(t, 3, cfg.EffectiveWorkers())
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ss.lib", "ff.lib", "tt.lib", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	cfg := DefaultConfig()
	cfg.Files = []string{filepath.Join(dir, "*.lib")}

	files, err := cfg.ExpandFiles(filepath.Join(dir, "ss.lib"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "ff.lib"),
		filepath.Join(dir, "ss.lib"),
		filepath.Join(dir, "tt.lib"),
	}, files)

	_, err = cfg.ExpandFiles(filepath.Join(dir, "missing.lib"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := DefaultConfig()
	_, err = empty.ExpandFiles()
	assert.ErrorIs(t, err, ErrNoFiles)

	empty.Files = []string{filepath.Join(dir, "*.db")}
	_, err = empty.ExpandFiles()
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = empty.ExpandFiles("[")
	assert.ErrorIs(t, err, liberty.ErrInvalidConfiguration)
}
