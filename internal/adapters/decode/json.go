package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/jsamuelsen11/layerflow/internal/domain/document"
)

// decodeJSON walks the token stream so that object keys keep their order.
func decodeJSON(data []byte) (*document.Layer, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty input: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	root, err := jsonObject(dec, "", 1)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}
	return root, nil
}

// jsonObject reads the members of an object whose opening brace has been
// consumed.
func jsonObject(dec *json.Decoder, name string, depth int) (*document.Layer, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	layer := document.NewLayer(name)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, want string", tok)
		}
		v, err := jsonValue(dec, key, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		layer.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, err
	}
	return layer, nil
}

// jsonValue reads one value. Objects become layers named after key; so do
// objects inside arrays.
func jsonValue(dec *json.Decoder, key string, depth int) (document.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return document.Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			l, err := jsonObject(dec, key, depth+1)
			if err != nil {
				return document.Value{}, err
			}
			return document.Nested(l), nil
		case '[':
			var items []document.Value
			for dec.More() {
				item, err := jsonValue(dec, key, depth+1)
				if err != nil {
					return document.Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return document.Value{}, err
			}
			return document.List(items...), nil
		default:
			return document.Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return document.Value{}, err
		}
		return document.Scalar(f), nil
	default:
		return document.Scalar(t), nil
	}
}
