package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

// MaxBatchDocuments bounds the documents accepted by one batch request.
const MaxBatchDocuments = 100

const msgRequired = "is required"

// BatchRequest is the body of POST /api/v1/documents/batch.
type BatchRequest struct {
	Documents []BatchDocument `json:"documents"`
}

// BatchDocument carries one document either as a JSON value (Document) or as
// raw text in Format (Content), for YAML input.
type BatchDocument struct {
	Name     string          `json:"name,omitempty"`
	Format   string          `json:"format,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
	Content  string          `json:"content,omitempty"`
}

// Validate checks the batch shape. Returns a *domain.ValidationError if any
// checks fail.
func (r *BatchRequest) Validate() error {
	verr := &domain.ValidationError{Path: "body"}

	switch {
	case len(r.Documents) == 0:
		verr.Violations = append(verr.Violations, domain.Violation{
			Field: "documents", Rule: "required", Message: msgRequired,
		})
	case len(r.Documents) > MaxBatchDocuments:
		verr.Violations = append(verr.Violations, domain.Violation{
			Field: "documents", Rule: "max",
			Message: fmt.Sprintf("must contain at most %d documents", MaxBatchDocuments),
		})
	}

	for i, d := range r.Documents {
		field := fmt.Sprintf("documents[%d]", i)
		hasDoc := len(d.Document) > 0 && string(d.Document) != "null"
		hasContent := strings.TrimSpace(d.Content) != ""
		switch {
		case hasDoc && hasContent:
			verr.Violations = append(verr.Violations, domain.Violation{
				Field: field, Rule: "exclusive", Message: "must set only one of document or content",
			})
		case !hasDoc && !hasContent:
			verr.Violations = append(verr.Violations, domain.Violation{
				Field: field, Rule: "required", Message: "document or content " + msgRequired,
			})
		}
	}

	if len(verr.Violations) > 0 {
		return verr
	}
	return nil
}

// Raw converts the batch entries into raw documents. An inline JSON document
// is always decoded as JSON.
func (r *BatchRequest) Raw() []domain.RawDocument {
	raws := make([]domain.RawDocument, 0, len(r.Documents))
	for i, d := range r.Documents {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("documents[%d]", i)
		}
		if len(d.Document) > 0 && string(d.Document) != "null" {
			raws = append(raws, domain.RawDocument{Name: name, Format: "json", Data: d.Document})
			continue
		}
		raws = append(raws, domain.RawDocument{Name: name, Format: d.Format, Data: []byte(d.Content)})
	}
	return raws
}
