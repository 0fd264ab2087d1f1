package domain

import "encoding/json"

// State is a step of the per-layer state machine.
type State int

// Visit states. Completed and Failed are terminal.
const (
	StatePending State = iota
	StateValidating
	StateTransforming
	StateStoring
	StateNotifying
	StateCompleted
	StateFailed
)

var stateNames = map[State]string{
	StatePending:      "pending",
	StateValidating:   "validating",
	StateTransforming: "transforming",
	StateStoring:      "storing",
	StateNotifying:    "notifying",
	StateCompleted:    "completed",
	StateFailed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the state ends a visit.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind classifies the result of a layer's own processing, independent of
// its descendants.
type Kind int

// Outcome kinds.
const (
	KindSuccess Kind = iota
	KindValidationFailed
	KindTransformFailed
	KindStorageFailed
	// KindAborted marks a layer whose visit never started because the run
	// was aborted.
	KindAborted
)

var kindNames = map[Kind]string{
	KindSuccess:          "success",
	KindValidationFailed: "validation_failed",
	KindTransformFailed:  "transform_failed",
	KindStorageFailed:    "storage_failed",
	KindAborted:          "aborted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of visiting one layer, together with the outcomes of
// every descendant that was visited (or skipped) beneath it.
//
// State is Completed only when the layer's own processing succeeded and every
// child outcome is Completed.
type Outcome struct {
	Path     string
	Name     string
	Tag      string
	State    State
	Kind     Kind
	Err      error
	Receipt  Receipt
	Children []*Outcome
}

// Completed reports whether the whole subtree completed.
func (o *Outcome) Completed() bool {
	return o.State == StateCompleted
}

// Walk visits o and its descendants depth-first in document order.
// Returning false from fn stops the walk.
func (o *Outcome) Walk(fn func(*Outcome) bool) bool {
	if !fn(o) {
		return false
	}
	for _, child := range o.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Failures returns every outcome in the subtree whose own processing failed,
// in document order. Aborted layers are not failures; see Skipped.
func (o *Outcome) Failures() []*Outcome {
	var failures []*Outcome
	o.Walk(func(n *Outcome) bool {
		if n.Kind != KindSuccess && n.Kind != KindAborted {
			failures = append(failures, n)
		}
		return true
	})
	return failures
}

// Failure returns the first failed outcome in document order, or nil.
func (o *Outcome) Failure() *Outcome {
	var first *Outcome
	o.Walk(func(n *Outcome) bool {
		if n.Kind != KindSuccess && n.Kind != KindAborted {
			first = n
			return false
		}
		return true
	})
	return first
}

// Skipped returns every outcome whose visit never started because the run
// was aborted.
func (o *Outcome) Skipped() []*Outcome {
	var skipped []*Outcome
	o.Walk(func(n *Outcome) bool {
		if n.Kind == KindAborted {
			skipped = append(skipped, n)
		}
		return true
	})
	return skipped
}

// Receipts returns the receipts of every stored layer in the subtree.
func (o *Outcome) Receipts() []Receipt {
	var receipts []Receipt
	o.Walk(func(n *Outcome) bool {
		if !n.Receipt.IsZero() {
			receipts = append(receipts, n.Receipt)
		}
		return true
	})
	return receipts
}

// Reason returns the error message of the first failure, or "".
func (o *Outcome) Reason() string {
	if f := o.Failure(); f != nil && f.Err != nil {
		return f.Err.Error()
	}
	return ""
}

type outcomeJSON struct {
	Path     string     `json:"path"`
	Name     string     `json:"name,omitempty"`
	Tag      string     `json:"tag,omitempty"`
	State    State      `json:"state"`
	Kind     Kind       `json:"kind"`
	Error    string     `json:"error,omitempty"`
	Receipt  *Receipt   `json:"receipt,omitempty"`
	Children []*Outcome `json:"children,omitempty"`
}

// MarshalJSON renders the outcome tree with errors flattened to messages.
func (o *Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{
		Path:     o.Path,
		Name:     o.Name,
		Tag:      o.Tag,
		State:    o.State,
		Kind:     o.Kind,
		Children: o.Children,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	if !o.Receipt.IsZero() {
		r := o.Receipt
		out.Receipt = &r
	}
	return json.Marshal(out)
}
