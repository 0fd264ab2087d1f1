// Package decode turns raw JSON or YAML input into a document.Document.
//
// Both decoders keep the key order of the input so that the processor's
// "document order" is the order in which fields were written. JSON input may
// carry comments and trailing commas.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// maxDepth bounds layer nesting.
const maxDepth = 64

var (
	errNotObject = errors.New("top-level value must be an object")
	errTooDeep   = fmt.Errorf("layers nested deeper than %d", maxDepth)
)

// Compile-time interface check.
var _ ports.Decoder = (*Decoder)(nil)

// Decoder implements ports.Decoder for JSON and YAML.
type Decoder struct{}

// New creates a Decoder.
func New() *Decoder {
	return &Decoder{}
}

// Decode decodes raw in raw.Format, or in the format detected from raw.Name
// and the content when Format is empty.
func (d *Decoder) Decode(raw domain.RawDocument) (*document.Document, error) {
	format, err := Detect(raw)
	if err != nil {
		return nil, &domain.DecodeError{Format: raw.Format, Err: err}
	}

	var root *document.Layer
	switch format {
	case FormatJSON:
		root, err = decodeJSON(raw.Data)
	case FormatYAML:
		root, err = decodeYAML(raw.Data)
	}
	if err != nil {
		return nil, &domain.DecodeError{Format: format, Err: err}
	}

	doc := document.New(root)
	doc.Source = raw.Name
	return doc, nil
}

// Detect resolves the format of raw: the explicit Format if set, then the
// file extension of Name, then the first non-space byte of Data.
func Detect(raw domain.RawDocument) (string, error) {
	if raw.Format != "" {
		return Normalize(raw.Format)
	}
	switch strings.ToLower(filepath.Ext(raw.Name)) {
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	if trimmed := bytes.TrimSpace(raw.Data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON, nil
	}
	return FormatYAML, nil
}

// Normalize maps a format name or alias to a supported format.
func Normalize(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "jsonc":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// FromContentType maps an HTTP Content-Type to a format. It returns "" for
// types that do not name one, leaving detection to Decode.
func FromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return FormatJSON
	case mediaType == "application/yaml", mediaType == "application/x-yaml", mediaType == "text/yaml":
		return FormatYAML
	default:
		return ""
	}
}
