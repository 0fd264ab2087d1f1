package strategy

import (
	"fmt"

	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Default kinds used when a table row leaves the validator or transformer
// kind empty.
const (
	DefaultValidatorKind   = "none"
	DefaultTransformerKind = "identity"
)

// ValidatorFactory builds a validator for one table row.
type ValidatorFactory func(cfg config.ValidatorConfig) (ports.Validator, error)

// TransformerFactory builds a transformer for one table row.
type TransformerFactory func(cfg config.TransformerConfig) (ports.Transformer, error)

// NotifierFactory returns the notifier for a kind. It is called at most once
// per resolver, and only for kinds some row references.
type NotifierFactory func() (ports.Notifier, error)

// StorageFactory returns the storage handler for a kind. It is called at
// most once per resolver, and only for kinds some row references.
type StorageFactory func() (ports.StorageHandler, error)

// Catalog registers the kinds a strategy table may name. Register every kind
// before building a Resolver; a Catalog is not safe for concurrent
// registration.
type Catalog struct {
	validators   map[string]ValidatorFactory
	transformers map[string]TransformerFactory
	notifiers    map[string]NotifierFactory
	storage      map[string]StorageFactory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		validators:   make(map[string]ValidatorFactory),
		transformers: make(map[string]TransformerFactory),
		notifiers:    make(map[string]NotifierFactory),
		storage:      make(map[string]StorageFactory),
	}
}

// RegisterValidator adds a validator kind.
func (c *Catalog) RegisterValidator(kind string, f ValidatorFactory) *Catalog {
	c.validators[kind] = f
	return c
}

// RegisterTransformer adds a transformer kind.
func (c *Catalog) RegisterTransformer(kind string, f TransformerFactory) *Catalog {
	c.transformers[kind] = f
	return c
}

// RegisterNotifier adds a notifier kind.
func (c *Catalog) RegisterNotifier(kind string, f NotifierFactory) *Catalog {
	c.notifiers[kind] = f
	return c
}

// RegisterStorage adds a storage kind.
func (c *Catalog) RegisterStorage(kind string, f StorageFactory) *Catalog {
	c.storage[kind] = f
	return c
}

// builder instantiates shared notifiers and storage handlers once per kind
// while a Resolver is being built.
type builder struct {
	catalog   *Catalog
	notifiers map[string]ports.Notifier
	storage   map[string]ports.StorageHandler
	failed    map[string]error
}

func (c *Catalog) builder() *builder {
	return &builder{
		catalog:   c,
		notifiers: make(map[string]ports.Notifier),
		storage:   make(map[string]ports.StorageHandler),
		failed:    make(map[string]error),
	}
}

func (b *builder) build(row config.StrategyConfig, storageKind, notifierKind string) (*Strategy, []error) {
	var errs []error
	s := &Strategy{
		Tag:                   row.Tag,
		IndependentOfChildren: row.IndependentOfChildren,
		StopOnFailure:         row.StopsOnFailure(),
	}

	vkind := row.Validator.Kind
	if vkind == "" {
		vkind = DefaultValidatorKind
	}
	if f, ok := b.catalog.validators[vkind]; !ok {
		errs = append(errs, fmt.Errorf("unknown validator kind %q", vkind))
	} else if v, err := f(row.Validator); err != nil {
		errs = append(errs, fmt.Errorf("validator %s: %w", vkind, err))
	} else {
		s.Validator = v
	}

	tkind := row.Transformer.Kind
	if tkind == "" {
		tkind = DefaultTransformerKind
	}
	if f, ok := b.catalog.transformers[tkind]; !ok {
		errs = append(errs, fmt.Errorf("unknown transformer kind %q", tkind))
	} else if t, err := f(row.Transformer); err != nil {
		errs = append(errs, fmt.Errorf("transformer %s: %w", tkind, err))
	} else {
		s.Transformer = t
	}

	n, err := b.notifier(notifierKind)
	if err != nil {
		errs = append(errs, err)
	}
	s.Notifier = n

	h, err := b.storageHandler(storageKind)
	if err != nil {
		errs = append(errs, err)
	}
	s.Storage = h

	return s, errs
}

func (b *builder) notifier(kind string) (ports.Notifier, error) {
	if n, ok := b.notifiers[kind]; ok {
		return n, nil
	}
	key := "notifier/" + kind
	if err, ok := b.failed[key]; ok {
		return nil, err
	}
	f, ok := b.catalog.notifiers[kind]
	if !ok {
		b.failed[key] = fmt.Errorf("unknown notifier kind %q", kind)
		return nil, b.failed[key]
	}
	n, err := f()
	if err != nil {
		b.failed[key] = fmt.Errorf("notifier %s: %w", kind, err)
		return nil, b.failed[key]
	}
	b.notifiers[kind] = n
	return n, nil
}

func (b *builder) storageHandler(kind string) (ports.StorageHandler, error) {
	if h, ok := b.storage[kind]; ok {
		return h, nil
	}
	key := "storage/" + kind
	if err, ok := b.failed[key]; ok {
		return nil, err
	}
	f, ok := b.catalog.storage[kind]
	if !ok {
		b.failed[key] = fmt.Errorf("unknown storage kind %q", kind)
		return nil, b.failed[key]
	}
	h, err := f()
	if err != nil {
		b.failed[key] = fmt.Errorf("storage %s: %w", kind, err)
		return nil, b.failed[key]
	}
	b.storage[kind] = h
	return h, nil
}
