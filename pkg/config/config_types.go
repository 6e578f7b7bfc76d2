package config

import "github.com/dd0wney/libcert/pkg/liberty"

// DefaultScale converts library time units to the units of the golden
// Monte-Carlo results (ns to ps).
const DefaultScale = 1e3

// RunConfig holds everything a libcert run needs
type RunConfig struct {
	Dialect     string                   `yaml:"dialect" validate:"required,oneof=nominal variation"`
	Class       string                   `yaml:"class" validate:"omitempty,oneof=all constraint delay slew"`
	Files       []string                 `yaml:"files" validate:"dive,glob"`
	Workers     int                      `yaml:"workers" validate:"gte=0,lte=256"`
	Scale       float64                  `yaml:"scale" validate:"gt=0"`
	ShapeHints  map[string]liberty.Shape `yaml:"shape_hints" validate:"dive"`
	LogLevel    string                   `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	MetricsFile string                   `yaml:"metrics_file"`
	Export      ExportConfig             `yaml:"export"`
}

// ExportConfig selects the sinks flattened tables are written to. Empty
// fields disable their sink.
type ExportConfig struct {
	CSV         string         `yaml:"csv"`          // Path of the table point CSV
	SnapshotDir string         `yaml:"snapshot_dir"` // Directory for compressed model snapshots
	Postgres    PostgresConfig `yaml:"postgres"`
	S3          S3Config       `yaml:"s3"`
}

// PostgresConfig configures the table point store
type PostgresConfig struct {
	URL       string `yaml:"url" validate:"omitempty,url"`
	MaxConns  int32  `yaml:"max_conns" validate:"gte=0,lte=100"`
	BatchSize int    `yaml:"batch_size" validate:"gte=0,lte=100000"`
}

// S3Config configures artifact upload
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"` // S3-compatible endpoint (MinIO etc.)
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Enabled reports whether a Postgres sink is configured
func (p PostgresConfig) Enabled() bool {
	return p.URL != ""
}

// Enabled reports whether an S3 upload is configured
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// DefaultConfig returns a nominal, all-class configuration with the
// standard table shapes
func DefaultConfig() *RunConfig {
	return &RunConfig{
		Dialect:  liberty.Nominal.String(),
		Class:    liberty.ClassAll.String(),
		Scale:    DefaultScale,
		LogLevel: "info",
		ShapeHints: map[string]liberty.Shape{
			string(liberty.FamilyDelay):      {Rows: 8, Cols: 8},
			string(liberty.FamilySlew):       {Rows: 8, Cols: 8},
			string(liberty.FamilyConstraint): {Rows: 5, Cols: 5},
		},
		Export: ExportConfig{
			Postgres: PostgresConfig{MaxConns: 4, BatchSize: 1000},
			S3:       S3Config{Prefix: "libcert"},
		},
	}
}
