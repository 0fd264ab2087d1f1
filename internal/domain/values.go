package domain

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ValidationResult is the structured answer of a Validator. An empty result
// means the layer passed every rule.
type ValidationResult struct {
	Violations []Violation
}

// Valid reports whether no rule was violated.
func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

// Add records a violated rule.
func (r *ValidationResult) Add(field, rule, message string) {
	r.Violations = append(r.Violations, Violation{Field: field, Rule: rule, Message: message})
}

// Err converts the result into a *ValidationError for the given layer path,
// or nil when the layer is valid. Violations are sorted by field then rule so
// that reports are stable.
func (r ValidationResult) Err(path string) error {
	if r.Valid() {
		return nil
	}
	violations := append([]Violation(nil), r.Violations...)
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Field != violations[j].Field {
			return violations[i].Field < violations[j].Field
		}
		return violations[i].Rule < violations[j].Rule
	})
	return &ValidationError{Path: path, Violations: violations}
}

// TransformedLayer is the reshaped, storable form of one layer. Only scalar
// fields (and sequences of scalars) are carried; nested layers are processed
// on their own visit.
type TransformedLayer struct {
	TraceID uuid.UUID
	Path    string
	Tag     string
	Name    string
	Order   []string
	Fields  map[string]any
}

// Receipt identifies a stored record so that it can later be removed.
// The zero Receipt refers to nothing.
type Receipt struct {
	Backend string `json:"backend"`
	Key     string `json:"key"`
	Size    int    `json:"size,omitempty"`
}

// IsZero reports whether the receipt refers to nothing.
func (r Receipt) IsZero() bool {
	return r.Key == ""
}

// Event is the payload handed to a Notifier after a layer was stored.
type Event struct {
	TraceID    uuid.UUID      `json:"trace_id"`
	Path       string         `json:"path"`
	Tag        string         `json:"tag"`
	Name       string         `json:"name"`
	Fields     map[string]any `json:"fields"`
	Receipt    Receipt        `json:"receipt"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Undo is a compensating action registered after a successful forward
// operation. Implementations must be idempotent and tolerate a forward
// operation that only partially completed.
type Undo interface {
	// Undo reverses the forward operation. The context may differ from the
	// one used by the forward operation.
	Undo(ctx context.Context) error

	// Description returns a human-readable description for logging
	// (e.g., "remove object-store record address/1f2e...").
	Description() string
}

// Mail is one message handed to the mail relay.
// Key deduplicates deliveries: the relay sends at most one message per key,
// which is what makes the submission safe to retry.
type Mail struct {
	To      []string
	Subject string
	Body    string
	TraceID uuid.UUID
	Key     string
}
