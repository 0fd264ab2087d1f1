package document

import "fmt"

// ValueKind discriminates the Value variants.
type ValueKind int

// Value variants.
const (
	KindScalar ValueKind = iota
	KindLayer
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindLayer:
		return "layer"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a field value: a scalar, a nested layer, or a sequence of values.
type Value struct {
	kind   ValueKind
	scalar any
	layer  *Layer
	items  []Value
}

// Scalar wraps a string, number, bool or nil. Integer types are widened to
// float64 so that numeric comparisons behave the same for every decoder.
func Scalar(v any) Value {
	return Value{kind: KindScalar, scalar: normalize(v)}
}

// Nested wraps a child layer.
func Nested(l *Layer) Value {
	return Value{kind: KindLayer, layer: l}
}

// List wraps a sequence of values.
func List(items ...Value) Value {
	return Value{kind: KindList, items: items}
}

// Kind returns the variant.
func (v Value) Kind() ValueKind { return v.kind }

// Scalar returns the scalar payload; nil for other variants.
func (v Value) Scalar() any { return v.scalar }

// Layer returns the nested layer; nil for other variants.
func (v Value) Layer() *Layer { return v.layer }

// Items returns the sequence elements; nil for other variants.
func (v Value) Items() []Value { return v.items }

// Number returns the scalar as float64 when it is numeric.
func (v Value) Number() (float64, bool) {
	f, ok := v.scalar.(float64)
	return f, ok && v.kind == KindScalar
}

// Text returns the scalar as a string when it is one.
func (v Value) Text() (string, bool) {
	s, ok := v.scalar.(string)
	return s, ok && v.kind == KindScalar
}

// plainScalar converts scalars and all-scalar sequences to plain Go values.
func (v Value) plainScalar() (any, bool) {
	switch v.kind {
	case KindScalar:
		return v.scalar, true
	case KindList:
		out := make([]any, 0, len(v.items))
		for _, item := range v.items {
			p, ok := item.plainScalar()
			if !ok {
				return nil, false
			}
			out = append(out, p)
		}
		return out, true
	default:
		return nil, false
	}
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
