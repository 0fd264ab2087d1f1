package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrTransform     = errors.New("transform error")
	ErrStorage       = errors.New("storage error")
	ErrDecode        = errors.New("decode error")
	ErrConfiguration = errors.New("configuration error")
	ErrAborted       = errors.New("run aborted")
	ErrUnavailable   = errors.New("unavailable")
)

// Violation describes one broken validation rule on one field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// ValidationError provides programmatic access to the rules a layer violated.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr)
// to read verr.Violations.
type ValidationError struct {
	Path       string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s at %q: %s", ErrValidation.Error(), e.Path, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// TransformError wraps a failure raised while reshaping a layer.
type TransformError struct {
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s at %q: %v", ErrTransform.Error(), e.Path, e.Err)
}

func (e *TransformError) Unwrap() []error {
	return []error{ErrTransform, e.Err}
}

// StorageError wraps a failure reported by a storage backend.
type StorageError struct {
	Path    string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s at %q (%s): %v", ErrStorage.Error(), e.Path, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// DecodeError is returned when raw input cannot be turned into a Document.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrDecode.Error(), e.Format, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// ConfigurationError collects every problem found while building strategies
// from configuration. It is fatal at startup and never produced per record.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), strings.Join(e.Problems, "; "))
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
