package ports

import (
	"context"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
)

// Validator checks a layer's shape before anything is written.
type Validator interface {
	// Validate returns every violated rule. It must not perform I/O.
	Validate(layer *document.Layer) domain.ValidationResult
}

// Transformer reshapes a layer into its storable form.
type Transformer interface {
	// Transform is pure data reshaping and must not perform I/O. Failures are
	// reported as errors and become TransformFailed outcomes.
	Transform(layer *document.Layer) (domain.TransformedLayer, error)
}

// Notifier signals an external subscriber that a layer was stored.
// Delivery is best effort: the processor logs a returned error and never
// fails the layer because of it.
type Notifier interface {
	// Name identifies the notifier kind in logs (e.g., "email", "queue").
	Name() string

	Notify(ctx context.Context, event domain.Event) error
}

// StorageHandler persists transformed layers and compensates for them.
type StorageHandler interface {
	// Name identifies the backend in logs and receipts
	// (e.g., "object-store", "database").
	Name() string

	// Store persists the layer. A handler that fails after partially writing
	// may return a non-zero receipt together with the error so that the
	// caller can remove the partial write.
	Store(ctx context.Context, layer domain.TransformedLayer) (domain.Receipt, error)

	// Remove deletes the record named by receipt. It must be a no-op for a
	// zero receipt or a record that does not exist.
	Remove(ctx context.Context, receipt domain.Receipt) error
}

// Decoder turns raw input into a document. It is the only collaborator that
// deals with byte-level formats.
type Decoder interface {
	// Decode returns a *domain.DecodeError when the input cannot be read as
	// the requested format.
	Decode(raw domain.RawDocument) (*document.Document, error)
}
