// Package errors provides error handling for archipelago.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrGeneration) {
//	    // retry the generation pass
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the regional-pool domain. Use these with errors.Is()
// for type-safe error checking and wrap them with errors.Wrap()/Wrapf() to
// add context while preserving the type.
var (
	// ErrConfiguration indicates an invalid parameter name, type, or range
	// supplied at configuration time.
	ErrConfiguration = New("invalid configuration")

	// ErrGeneration indicates a failed generation pass: external simulator
	// failure, malformed input file, species-count mismatch, or zero total
	// abundance. The pool is left in its prior state.
	ErrGeneration = New("generation failed")

	// ErrSampling indicates a migrant draw attempted on an empty or
	// all-zero-weight pool.
	ErrSampling = New("sampling failed")

	// ErrConflict indicates a duplicate species id.
	ErrConflict = New("species id conflict")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = New("not found")
)

// IsConfigurationError checks if an error is or wraps ErrConfiguration.
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsGenerationError checks if an error is or wraps ErrGeneration.
func IsGenerationError(err error) bool {
	return err != nil && Is(err, ErrGeneration)
}

// IsSamplingError checks if an error is or wraps ErrSampling.
func IsSamplingError(err error) bool {
	return err != nil && Is(err, ErrSampling)
}

// NewConfigurationError creates a configuration error with a formatted message.
func NewConfigurationError(format string, args ...interface{}) error {
	return Wrap(ErrConfiguration, Newf(format, args...).Error())
}

// NewGenerationError creates a generation error with a formatted message.
func NewGenerationError(format string, args ...interface{}) error {
	return Wrap(ErrGeneration, Newf(format, args...).Error())
}

// NewSamplingError creates a sampling error with a formatted message.
func NewSamplingError(format string, args ...interface{}) error {
	return Wrap(ErrSampling, Newf(format, args...).Error())
}
