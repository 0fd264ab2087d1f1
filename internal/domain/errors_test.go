package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrors_UnwrapToSentinels(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "validation", err: &ValidationError{Path: "a"}, sentinel: ErrValidation},
		{name: "transform", err: &TransformError{Path: "a", Err: cause}, sentinel: ErrTransform},
		{name: "storage", err: &StorageError{Path: "a", Backend: "file", Err: cause}, sentinel: ErrStorage},
		{name: "decode", err: &DecodeError{Format: "json", Err: cause}, sentinel: ErrDecode},
		{name: "configuration", err: &ConfigurationError{Problems: []string{"x"}}, sentinel: ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", wrapped, tt.sentinel)
			}
		})
	}
}

func TestStorageError_KeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := error(&StorageError{Path: "address", Backend: "file", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Backend != "file" {
		t.Errorf("errors.As StorageError = %+v", serr)
	}
}

func TestValidationResult_Err(t *testing.T) {
	t.Parallel()

	var r ValidationResult
	if err := r.Err("transaction"); err != nil {
		t.Fatalf("Err() on empty result = %v, want nil", err)
	}

	r.Add("zip", "required", "field is required")
	r.Add("amount", "min", "must be >= 0")

	err := r.Err("transaction")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Err() = %T, want *ValidationError", err)
	}
	if verr.Path != "transaction" {
		t.Errorf("Path = %q, want %q", verr.Path, "transaction")
	}
	if len(verr.Violations) != 2 || verr.Violations[0].Field != "amount" {
		t.Errorf("Violations = %+v, want sorted by field", verr.Violations)
	}
	if len(r.Violations) != 2 || r.Violations[0].Field != "zip" {
		t.Error("Err() must not reorder the receiver's violations")
	}
}
