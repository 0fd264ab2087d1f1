// Package document models the decoded input as a tree of layers.
//
// A Layer maps field names to Values. A Value is one of three variants: a
// scalar (string, float64, bool or nil), a nested Layer, or a sequence of
// Values. Only the Layer variant, directly or inside a sequence, produces a
// child visit during processing.
//
// Field order is recorded at decode time so that "document order" is
// well-defined for synchronous traversal and failure reporting.
package document

import (
	"strconv"
	"sync"
)

// Document is the root of one processing run. The root layer is a container:
// its direct child layers are the top-level records.
type Document struct {
	Root   *Layer
	Source string
}

// New wraps root as a Document.
func New(root *Layer) *Document {
	if root == nil {
		root = NewLayer("")
	}
	return &Document{Root: root}
}

// CountLayers returns the number of layers beneath the root.
func (d *Document) CountLayers() int {
	n := 0
	var walk func(*Layer)
	walk = func(l *Layer) {
		for _, c := range l.Children("") {
			n++
			walk(c.Layer)
		}
	}
	walk(d.Root)
	return n
}

// Layer is one node of the document tree.
//
// A Layer is immutable once decoded apart from two slots written by the
// processor that owns its visit: the classification tag (set once) and the
// attached transformation result.
type Layer struct {
	name   string
	keys   []string
	fields map[string]Value

	tagOnce sync.Once
	tag     string

	mu          sync.Mutex
	transformed map[string]any
}

// NewLayer creates an empty layer named after the field it appears under.
func NewLayer(name string) *Layer {
	return &Layer{name: name, fields: make(map[string]Value)}
}

// Name returns the field name the layer appears under in its parent.
func (l *Layer) Name() string { return l.name }

// Set assigns a field. The first assignment of a key fixes its position.
func (l *Layer) Set(key string, v Value) *Layer {
	if _, ok := l.fields[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.fields[key] = v
	return l
}

// Get returns the value of a field.
func (l *Layer) Get(key string) (Value, bool) {
	v, ok := l.fields[key]
	return v, ok
}

// Has reports whether a field is present.
func (l *Layer) Has(key string) bool {
	_, ok := l.fields[key]
	return ok
}

// Keys returns field names in document order.
func (l *Layer) Keys() []string {
	return append([]string(nil), l.keys...)
}

// Len returns the number of fields.
func (l *Layer) Len() int { return len(l.keys) }

// Tag returns the classification tag, computing it with classify on first
// use. Later calls return the memoized tag without invoking classify.
func (l *Layer) Tag(classify func(*Layer) string) string {
	l.tagOnce.Do(func() {
		l.tag = classify(l)
	})
	return l.tag
}

// Attach records the transformation result produced for this layer.
func (l *Layer) Attach(fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transformed = fields
}

// Transformed returns the attached transformation result, if any.
func (l *Layer) Transformed() (map[string]any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transformed, l.transformed != nil
}

// Scalars returns the scalar fields (and sequences holding only scalars) as
// plain Go values, together with their keys in document order.
func (l *Layer) Scalars() ([]string, map[string]any) {
	order := make([]string, 0, len(l.keys))
	out := make(map[string]any, len(l.keys))
	for _, k := range l.keys {
		v := l.fields[k]
		plain, ok := v.plainScalar()
		if !ok {
			continue
		}
		order = append(order, k)
		out[k] = plain
	}
	return order, out
}

// Child is a nested layer discovered beneath a parent, addressed by path.
type Child struct {
	Field string
	Index int
	Path  string
	Layer *Layer
}

// Children enumerates the direct child layers in document order. Layers held
// in sequences, at any nesting depth, appear as separate children with one
// index segment per level (batch[0][1]) and Index set to the position in the
// innermost sequence; other children have Index -1.
func (l *Layer) Children(parentPath string) []Child {
	var out []Child
	for _, k := range l.keys {
		v := l.fields[k]
		switch v.Kind() {
		case KindLayer:
			out = append(out, Child{Field: k, Index: -1, Path: Join(parentPath, k), Layer: v.Layer()})
		case KindList:
			out = appendItems(out, k, Join(parentPath, k), v.Items())
		case KindScalar:
		}
	}
	return out
}

func appendItems(out []Child, field, path string, items []Value) []Child {
	for i, item := range items {
		switch item.Kind() {
		case KindLayer:
			out = append(out, Child{Field: field, Index: i, Path: Index(path, i), Layer: item.Layer()})
		case KindList:
			out = appendItems(out, field, Index(path, i), item.Items())
		case KindScalar:
		}
	}
	return out
}

// Join appends a field name to a dotted path.
func Join(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}

// Index appends a sequence index to a path.
func Index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
