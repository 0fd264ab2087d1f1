// Package transform provides the Transformer implementations named in the
// strategy table: "rule-based", "reflective" and "identity".
//
// Transformers are pure. They read a layer's scalar fields (and sequences of
// scalars); nested layers are transformed on their own visit.
package transform

import (
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Transformer kinds.
const (
	KindRuleBased  = "rule-based"
	KindReflective = "reflective"
	KindIdentity   = "identity"
)

var _ ports.Transformer = Identity{}

// Identity passes scalar fields through unchanged.
type Identity struct{}

// Transform implements ports.Transformer.
func (Identity) Transform(layer *document.Layer) (domain.TransformedLayer, error) {
	order, fields := layer.Scalars()
	return domain.TransformedLayer{Order: order, Fields: fields}, nil
}

// record is an ordered field map under construction.
type record struct {
	order  []string
	fields map[string]any
}

func newRecord(layer *document.Layer) *record {
	order, fields := layer.Scalars()
	return &record{order: order, fields: fields}
}

func (r *record) get(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// set assigns key, appending it to the order when new.
func (r *record) set(key string, v any) {
	if _, ok := r.fields[key]; !ok {
		r.order = append(r.order, key)
	}
	r.fields[key] = v
}

func (r *record) drop(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// rename moves from to to, keeping from's position. An existing to is
// overwritten.
func (r *record) rename(from, to string) {
	v, ok := r.fields[from]
	if !ok || from == to {
		return
	}
	r.drop(to)
	delete(r.fields, from)
	r.fields[to] = v
	for i, k := range r.order {
		if k == from {
			r.order[i] = to
			break
		}
	}
}

func (r *record) result() domain.TransformedLayer {
	return domain.TransformedLayer{Order: r.order, Fields: r.fields}
}
