package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/libcert/pkg/liberty"
	"github.com/dd0wney/libcert/pkg/logging"
	"github.com/dd0wney/libcert/pkg/validation"
)

// ErrNoFiles is returned when file patterns match no library file.
var ErrNoFiles = errors.New("no library files matched")

// maxShapeDim bounds the rows and cols of a shape hint.
const maxShapeDim = 64

// Load reads a YAML run configuration over DefaultConfig. Unknown keys are
// rejected.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig and validates the result.
func Parse(data []byte) (*RunConfig, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Dialect = strings.ToLower(cfg.Dialect)
	cfg.Class = strings.ToLower(cfg.Class)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field tags and cross-field rules.
func (c *RunConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %v", liberty.ErrInvalidConfiguration, err)
	}

	cv := validation.NewConfigValidator("RunConfig")
	for family, shape := range c.ShapeHints {
		cv.OneOf("shape_hints", family, []string{
			string(liberty.FamilyDelay), string(liberty.FamilySlew), string(liberty.FamilyConstraint),
		})
		cv.RangeInt("shape_hints."+family+".rows", shape.Rows, 1, maxShapeDim)
		cv.RangeInt("shape_hints."+family+".cols", shape.Cols, 1, maxShapeDim)
	}
	cv.When(c.Export.S3.Enabled(), func(v *validation.ConfigValidator) {
		v.Required("export.s3.region", c.Export.S3.Region)
		v.Paired("export.s3.access_key_id", c.Export.S3.AccessKeyID, c.Export.S3.SecretAccessKey)
		v.Custom("export.s3.prefix", func() error {
			if strings.HasPrefix(c.Export.S3.Prefix, "/") {
				return errors.New("must be relative to the bucket root")
			}
			return nil
		})
	})
	cv.When(c.Export.Postgres.Enabled(), func(v *validation.ConfigValidator) {
		v.Scheme("export.postgres.url", c.Export.Postgres.URL, "postgres", "postgresql")
	})

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %v", liberty.ErrInvalidConfiguration, err)
	}
	return nil
}

// ParserOptions converts the configuration into liberty parser options.
func (c *RunConfig) ParserOptions(logger logging.Logger, recorder liberty.Recorder) (liberty.Options, error) {
	dialect, err := liberty.ParseDialect(c.Dialect)
	if err != nil {
		return liberty.Options{}, err
	}
	class, err := liberty.ParseClass(c.Class)
	if err != nil {
		return liberty.Options{}, err
	}

	hints := make(liberty.ShapeHints, len(c.ShapeHints))
	for family, shape := range c.ShapeHints {
		hints[liberty.Family(family)] = shape
	}

	return liberty.Options{
		Dialect:    dialect,
		Class:      class,
		ShapeHints: hints,
		Logger:     logger,
		Recorder:   recorder,
	}, nil
}

// EffectiveWorkers returns the configured worker count, or the number of
// CPUs when unset.
func (c *RunConfig) EffectiveWorkers() int {
	return validation.ClampInt(validation.DefaultOr(c.Workers, runtime.NumCPU()), 1, 256)
}

// ExpandFiles resolves every file pattern and returns the matching paths,
// sorted and without duplicates. A pattern without glob characters must name
// an existing file.
func (c *RunConfig) ExpandFiles(extra ...string) ([]string, error) {
	patterns := append(slices.Clone(c.Files), extra...)
	if len(patterns) == 0 {
		return nil, ErrNoFiles
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if err := validation.ValidateGlob(pattern); err != nil {
			return nil, fmt.Errorf("%w: %v", liberty.ErrInvalidConfiguration, err)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			if !strings.ContainsAny(pattern, `*?[`) {
				return nil, fmt.Errorf("%s: %w", pattern, os.ErrNotExist)
			}
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(patterns, ", "))
	}
	slices.Sort(files)
	return files, nil
}
