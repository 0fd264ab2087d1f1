// Package storage provides the in-process StorageHandler implementations
// ("memory", "file", "none") and the record encoding shared with the
// networked backends in its subpackages.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.StorageHandler = (*Memory)(nil)
	_ ports.StorageHandler = (*File)(nil)
	_ ports.StorageHandler = None{}
)

// Key names the record of layer: its run's trace identifier followed by the
// layer path. Keys are unique within a run and never reused across runs.
func Key(layer domain.TransformedLayer) string {
	return layer.TraceID.String() + "/" + layer.Path
}

// SplitKey reverses Key.
func SplitKey(key string) (traceID, path string, err error) {
	traceID, path, ok := strings.Cut(key, "/")
	if !ok || traceID == "" || path == "" {
		return "", "", fmt.Errorf("malformed record key %q", key)
	}
	return traceID, path, nil
}

// Encode renders layer as a JSON object whose fields keep the layer's order.
func Encode(layer domain.TransformedLayer) ([]byte, error) {
	fields, err := EncodeFields(layer)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"trace_id":`)
	writeJSONString(&buf, layer.TraceID.String())
	buf.WriteString(`,"path":`)
	writeJSONString(&buf, layer.Path)
	buf.WriteString(`,"tag":`)
	writeJSONString(&buf, layer.Tag)
	buf.WriteString(`,"name":`)
	writeJSONString(&buf, layer.Name)
	buf.WriteString(`,"fields":`)
	buf.Write(fields)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeFields renders only the field object, in layer order. Fields missing
// from Order are appended in map order after the ordered ones are exhausted;
// transformers always keep Order complete.
func EncodeFields(layer domain.TransformedLayer) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]struct{}, len(layer.Order))
	first := true
	write := func(k string) error {
		v, ok := layer.Fields[k]
		if !ok {
			return nil
		}
		if _, dup := seen[k]; dup {
			return nil
		}
		seen[k] = struct{}{}
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding field %q of %q: %w", k, layer.Path, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		writeJSONString(&buf, k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}
	for _, k := range layer.Order {
		if err := write(k); err != nil {
			return nil, err
		}
	}
	for k := range layer.Fields {
		if err := write(k); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// None accepts every layer and stores nothing.
type None struct{}

func (None) Name() string { return "none" }

func (None) Store(_ context.Context, _ domain.TransformedLayer) (domain.Receipt, error) {
	return domain.Receipt{}, nil
}

func (None) Remove(context.Context, domain.Receipt) error { return nil }
