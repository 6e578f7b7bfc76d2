package validation

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

// ConfigValidator checks run configuration values fluently and collects
// every failure instead of stopping at the first.
type ConfigValidator struct {
	name   string
	errors []error
}

// NewConfigValidator creates a validator whose messages are prefixed with
// configName.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{name: configName}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: "+format, append([]any{cv.name, field}, args...)...))
}

// Required fails when value is empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.fail(field, "required field is empty")
	}
	return cv
}

// RangeInt fails when value lies outside [min, max].
func (cv *ConfigValidator) RangeInt(field string, value, min, max int) *ConfigValidator {
	if value < min || value > max {
		cv.fail(field, "value %d is outside range [%d, %d]", value, min, max)
	}
	return cv
}

// OneOf fails when value is not in allowed.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	if !slices.Contains(allowed, value) {
		cv.fail(field, "value %q must be one of %v", value, allowed)
	}
	return cv
}

// Paired fails when exactly one of two values that must be set together is
// set, such as an access key and its secret.
func (cv *ConfigValidator) Paired(field, first, second string) *ConfigValidator {
	if (first == "") != (second == "") {
		cv.fail(field, "both values must be set together")
	}
	return cv
}

// Scheme fails when rawURL does not parse or uses a scheme outside schemes.
func (cv *ConfigValidator) Scheme(field, rawURL string, schemes ...string) *ConfigValidator {
	u, err := url.Parse(rawURL)
	if err != nil {
		cv.fail(field, "invalid URL: %v", err)
		return cv
	}
	if !slices.Contains(schemes, u.Scheme) {
		cv.fail(field, "scheme %q must be one of %v", u.Scheme, schemes)
	}
	return cv
}

// Custom records the error returned by fn.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When applies validations only if condition holds.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// HasErrors reports whether any check failed.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Validate returns every failed check joined into one error, or nil.
func (cv *ConfigValidator) Validate() error {
	return errors.Join(cv.errors...)
}

// DefaultOr returns value unless it is the zero value.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}

// ClampInt limits value to [lo, hi].
func ClampInt(value, lo, hi int) int {
	return max(lo, min(value, hi))
}
