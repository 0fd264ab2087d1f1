package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Rule-based operations.
const (
	OpRename  = "rename"
	OpDrop    = "drop"
	OpUpper   = "upper"
	OpLower   = "lower"
	OpTrim    = "trim"
	OpDefault = "default"
	OpCopy    = "copy"
)

var _ ports.Transformer = (*RuleBased)(nil)

// RuleBased applies an ordered list of field operations.
type RuleBased struct {
	ops []config.TransformOp
}

// NewRuleBased validates ops and builds a RuleBased transformer.
func NewRuleBased(ops []config.TransformOp) (*RuleBased, error) {
	var errs []error
	for i, op := range ops {
		if op.Field == "" {
			errs = append(errs, fmt.Errorf("ops[%d]: field is required", i))
		}
		switch op.Op {
		case OpRename, OpCopy:
			if op.To == "" {
				errs = append(errs, fmt.Errorf("ops[%d]: %s needs to", i, op.Op))
			}
		case OpDefault:
			if op.Value == nil {
				errs = append(errs, fmt.Errorf("ops[%d]: default needs value", i))
			}
		case OpDrop, OpUpper, OpLower, OpTrim:
		default:
			errs = append(errs, fmt.Errorf("ops[%d]: unknown op %q", i, op.Op))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &RuleBased{ops: ops}, nil
}

// Transform implements ports.Transformer. A string operation on a field
// holding a non-string fails the transformation.
func (t *RuleBased) Transform(layer *document.Layer) (domain.TransformedLayer, error) {
	r := newRecord(layer)
	for _, op := range t.ops {
		switch op.Op {
		case OpRename:
			r.rename(op.Field, op.To)
		case OpDrop:
			r.drop(op.Field)
		case OpCopy:
			if v, ok := r.get(op.Field); ok {
				r.set(op.To, v)
			}
		case OpDefault:
			if v, ok := r.get(op.Field); !ok || v == nil {
				r.set(op.Field, document.Scalar(op.Value).Scalar())
			}
		case OpUpper, OpLower, OpTrim:
			if err := mapString(r, op.Op, op.Field); err != nil {
				return domain.TransformedLayer{}, err
			}
		}
	}
	return r.result(), nil
}

func mapString(r *record, op, field string) error {
	v, ok := r.get(field)
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s %s: field holds %T, not a string", op, field, v)
	}
	switch op {
	case OpUpper:
		s = strings.ToUpper(s)
	case OpLower:
		s = strings.ToLower(s)
	case OpTrim:
		s = strings.TrimSpace(s)
	}
	r.set(field, s)
	return nil
}
