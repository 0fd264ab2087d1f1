// Package validate provides the Validator implementations named in the
// strategy table: "schema", driven by per-tag rules, and "none".
package validate

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Validator kinds.
const (
	KindSchema = "schema"
	KindNone   = "none"
)

// Rule names reported in violations.
const (
	RuleRequired  = "required"
	RuleAllowed   = "allowed"
	RuleForbidden = "forbidden"
	RuleSublayer  = "sublayer"
	RuleType      = "type"
	RuleMin       = "min"
	RuleMax       = "max"
)

// Field types accepted by the types rule.
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeLayer  = "layer"
	TypeList   = "list"
)

var (
	_ ports.Validator = (*Schema)(nil)
	_ ports.Validator = None{}
)

// Schema checks a layer against declarative field rules and reports every
// violation.
type Schema struct {
	required         []string
	allowed          map[string]bool
	forbidden        map[string]bool
	allowSublayers   bool
	allowedSublayers map[string]bool
	types            map[string]string
	min              map[string]float64
	max              map[string]float64
}

// NewSchema builds a Schema from cfg. It rejects unknown type names,
// inverted bounds and fields that are both required and forbidden.
func NewSchema(cfg config.ValidatorConfig) (*Schema, error) {
	var errs []error
	for field, typ := range cfg.Types {
		switch typ {
		case TypeString, TypeNumber, TypeBool, TypeLayer, TypeList:
		default:
			errs = append(errs, fmt.Errorf("types.%s: unknown type %q", field, typ))
		}
	}
	for field, lo := range cfg.Min {
		if hi, ok := cfg.Max[field]; ok && lo > hi {
			errs = append(errs, fmt.Errorf("%s: min %g is greater than max %g", field, lo, hi))
		}
	}
	for _, field := range cfg.Required {
		if slices.Contains(cfg.Forbidden, field) {
			errs = append(errs, fmt.Errorf("%s: both required and forbidden", field))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	s := &Schema{
		required:         slices.Clone(cfg.Required),
		forbidden:        set(cfg.Forbidden),
		allowSublayers:   cfg.AllowSublayers == nil || *cfg.AllowSublayers,
		allowedSublayers: set(cfg.AllowedSublayers),
		types:            cfg.Types,
		min:              cfg.Min,
		max:              cfg.Max,
	}
	if len(cfg.Allowed) > 0 {
		s.allowed = set(append(slices.Clone(cfg.Allowed), cfg.Required...))
	}
	return s, nil
}

// Validate implements ports.Validator.
func (s *Schema) Validate(layer *document.Layer) domain.ValidationResult {
	var r domain.ValidationResult

	for _, field := range s.required {
		if !layer.Has(field) {
			r.Add(field, RuleRequired, "field is required")
		}
	}

	for _, key := range layer.Keys() {
		v, _ := layer.Get(key)
		if s.forbidden[key] {
			r.Add(key, RuleForbidden, "field is forbidden")
			continue
		}
		if holdsLayer(v) {
			s.checkSublayer(&r, key)
		} else if s.allowed != nil && !s.allowed[key] {
			r.Add(key, RuleAllowed, "field is not allowed")
		}
	}

	for _, field := range slices.Sorted(maps.Keys(s.types)) {
		v, ok := layer.Get(field)
		if !ok {
			continue
		}
		if got := typeOf(v); got != s.types[field] {
			r.Add(field, RuleType, fmt.Sprintf("want %s, got %s", s.types[field], got))
		}
	}

	s.checkBounds(&r, layer)
	return r
}

func (s *Schema) checkSublayer(r *domain.ValidationResult, key string) {
	switch {
	case !s.allowSublayers:
		r.Add(key, RuleSublayer, "sub-layers are not allowed")
	case len(s.allowedSublayers) > 0 && !s.allowedSublayers[key]:
		r.Add(key, RuleSublayer, "sub-layer is not allowed")
	}
}

func (s *Schema) checkBounds(r *domain.ValidationResult, layer *document.Layer) {
	for _, field := range slices.Sorted(maps.Keys(s.min)) {
		v, ok := layer.Get(field)
		if !ok {
			continue
		}
		n, isNum := v.Number()
		switch {
		case !isNum:
			r.Add(field, RuleMin, "must be a number")
		case n < s.min[field]:
			r.Add(field, RuleMin, fmt.Sprintf("must be >= %g, got %g", s.min[field], n))
		}
	}
	for _, field := range slices.Sorted(maps.Keys(s.max)) {
		v, ok := layer.Get(field)
		if !ok {
			continue
		}
		n, isNum := v.Number()
		switch {
		case !isNum:
			r.Add(field, RuleMax, "must be a number")
		case n > s.max[field]:
			r.Add(field, RuleMax, fmt.Sprintf("must be <= %g, got %g", s.max[field], n))
		}
	}
}

// None accepts every layer.
type None struct{}

// Validate implements ports.Validator.
func (None) Validate(*document.Layer) domain.ValidationResult {
	return domain.ValidationResult{}
}

func holdsLayer(v document.Value) bool {
	switch v.Kind() {
	case document.KindLayer:
		return true
	case document.KindList:
		return slices.ContainsFunc(v.Items(), holdsLayer)
	default:
		return false
	}
}

func typeOf(v document.Value) string {
	switch v.Kind() {
	case document.KindLayer:
		return TypeLayer
	case document.KindList:
		return TypeList
	}
	switch v.Scalar().(type) {
	case string:
		return TypeString
	case float64:
		return TypeNumber
	case bool:
		return TypeBool
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v.Scalar())
	}
}

func set(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

