// Package bootstrap wires the layer-processing graph into a samber/do
// injector. Both cmd/server and cmd/ingest register the same graph; the
// server adds its HTTP layer on top.
//
// Storage and notifier backends are created lazily by the strategy catalog,
// so a profile only connects to the backends its strategy table references.
// Every backend created that way is tracked by Backends, which registers its
// health check and closes it on shutdown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/do/v2"

	"github.com/jsamuelsen11/layerflow/internal/adapters/clients/kafka"
	"github.com/jsamuelsen11/layerflow/internal/adapters/clients/mailrelay"
	"github.com/jsamuelsen11/layerflow/internal/adapters/decode"
	"github.com/jsamuelsen11/layerflow/internal/adapters/notify"
	"github.com/jsamuelsen11/layerflow/internal/adapters/storage"
	"github.com/jsamuelsen11/layerflow/internal/adapters/storage/database"
	"github.com/jsamuelsen11/layerflow/internal/adapters/storage/kv"
	"github.com/jsamuelsen11/layerflow/internal/adapters/storage/objectstore"
	"github.com/jsamuelsen11/layerflow/internal/adapters/transform"
	"github.com/jsamuelsen11/layerflow/internal/adapters/validate"
	"github.com/jsamuelsen11/layerflow/internal/app/classify"
	"github.com/jsamuelsen11/layerflow/internal/app/ingest"
	"github.com/jsamuelsen11/layerflow/internal/app/processor"
	"github.com/jsamuelsen11/layerflow/internal/app/strategy"
	"github.com/jsamuelsen11/layerflow/internal/app/workpool"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/platform/health"
	"github.com/jsamuelsen11/layerflow/internal/platform/httpclient"
	"github.com/jsamuelsen11/layerflow/internal/platform/telemetry"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Backends tracks the connections opened by catalog factories.
type Backends struct {
	mu       sync.Mutex
	checkers []ports.HealthChecker
	closers  []func() error
}

func (b *Backends) track(checker ports.HealthChecker, closer func() error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if checker != nil {
		b.checkers = append(b.checkers, checker)
	}
	if closer != nil {
		b.closers = append(b.closers, closer)
	}
}

// Checkers returns the health checkers of every backend created so far.
func (b *Backends) Checkers() []ports.HealthChecker {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ports.HealthChecker, len(b.checkers))
	copy(out, b.checkers)
	return out
}

// Close releases every tracked backend in reverse creation order.
func (b *Backends) Close() error {
	b.mu.Lock()
	closers := b.closers
	b.closers = nil
	b.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewCatalog registers every validator, transformer, notifier and storage
// kind. Connection-holding backends use ctx while connecting and are tracked
// in backends.
func NewCatalog(
	ctx context.Context,
	cfg *config.Config,
	metrics *telemetry.Metrics,
	backends *Backends,
	logger *slog.Logger,
) *strategy.Catalog {
	c := strategy.NewCatalog()

	c.RegisterValidator("schema", func(vc config.ValidatorConfig) (ports.Validator, error) {
		v, err := validate.NewSchema(vc)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	c.RegisterValidator("none", func(config.ValidatorConfig) (ports.Validator, error) {
		return validate.None{}, nil
	})

	c.RegisterTransformer("rule-based", func(tc config.TransformerConfig) (ports.Transformer, error) {
		t, err := transform.NewRuleBased(tc.Ops)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	c.RegisterTransformer("reflective", func(tc config.TransformerConfig) (ports.Transformer, error) {
		t, err := transform.NewReflective(tc.Model)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	c.RegisterTransformer("identity", func(config.TransformerConfig) (ports.Transformer, error) {
		return transform.Identity{}, nil
	})

	c.RegisterNotifier(config.NotifierEmail, func() (ports.Notifier, error) {
		email := cfg.Notify.Email
		client := httpclient.New(&email.Client, mailrelay.ServiceName, metrics, logger)
		relay := mailrelay.New(client, email.Token, email.From, logger)
		backends.track(relay, nil)
		return notify.NewEmail(relay, email), nil
	})
	c.RegisterNotifier(config.NotifierQueue, func() (ports.Notifier, error) {
		producer, err := kafka.NewProducer(cfg.Notify.Queue, logger)
		if err != nil {
			return nil, err
		}
		backends.track(producer, func() error {
			producer.Close()
			return nil
		})
		return notify.NewQueue(producer, cfg.Notify.Queue.Topic), nil
	})
	c.RegisterNotifier(config.NotifierLog, func() (ports.Notifier, error) {
		return notify.NewLog(logger), nil
	})
	c.RegisterNotifier(config.NotifierNone, func() (ports.Notifier, error) {
		return notify.None{}, nil
	})

	c.RegisterStorage(config.StorageObjectStore, func() (ports.StorageHandler, error) {
		store, err := objectstore.New(ctx, cfg.Storage.ObjectStore, logger)
		if err != nil {
			return nil, err
		}
		backends.track(store, nil)
		return store, nil
	})
	c.RegisterStorage(config.StorageDatabase, func() (ports.StorageHandler, error) {
		store, err := database.New(ctx, cfg.Storage.Database, logger)
		if err != nil {
			return nil, err
		}
		backends.track(store, func() error {
			store.Close()
			return nil
		})
		return store, nil
	})
	c.RegisterStorage(config.StorageKV, func() (ports.StorageHandler, error) {
		store, err := kv.New(ctx, cfg.Storage.Redis)
		if err != nil {
			return nil, err
		}
		backends.track(store, store.Close)
		return store, nil
	})
	c.RegisterStorage(config.StorageFile, func() (ports.StorageHandler, error) {
		store, err := storage.NewFile(cfg.Storage.File)
		if err != nil {
			return nil, err
		}
		backends.track(store, nil)
		return store, nil
	})
	c.RegisterStorage(config.StorageMemory, func() (ports.StorageHandler, error) {
		return storage.NewMemory(), nil
	})
	c.RegisterStorage(config.StorageNone, func() (ports.StorageHandler, error) {
		return storage.None{}, nil
	})

	return c
}

// Register adds the processing graph to injector. The caller must provide
// *telemetry.Metrics (nil when telemetry is disabled) before resolving
// anything. Resolving ports.DocumentService builds every strategy, connects
// the referenced backends and registers their health checks.
func Register(ctx context.Context, injector do.Injector, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(_ do.Injector) (*Backends, error) {
		return &Backends{}, nil
	})

	do.Provide(injector, func(i do.Injector) (*strategy.Catalog, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		backends := do.MustInvoke[*Backends](i)
		return NewCatalog(ctx, cfg, metrics, backends, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (*classify.Classifier, error) {
		return strategy.NewClassifier(cfg.Pipeline)
	})

	do.Provide(injector, func(i do.Injector) (*strategy.Resolver, error) {
		classifier := do.MustInvoke[*classify.Classifier](i)
		catalog := do.MustInvoke[*strategy.Catalog](i)
		backends := do.MustInvoke[*Backends](i)
		registry := do.MustInvoke[ports.HealthRegistry](i)

		resolver, err := strategy.NewResolver(classifier, cfg.Pipeline, catalog)
		if err != nil {
			if closeErr := backends.Close(); closeErr != nil {
				logger.Error("failed to close backends",
					slog.String("operation", "bootstrap.Resolver"),
					slog.Any("error", closeErr),
				)
			}
			return nil, fmt.Errorf("building strategies: %w", err)
		}

		for _, checker := range backends.Checkers() {
			registry.Register(checker)
		}
		for _, s := range resolver.Strategies() {
			logger.Debug("strategy ready",
				slog.String("tag", s.Tag),
				slog.String("storage", s.Storage.Name()),
				slog.String("notifier", s.Notifier.Name()),
				slog.Bool("independent_of_children", s.IndependentOfChildren),
				slog.Bool("stop_on_failure", s.StopOnFailure),
			)
		}
		return resolver, nil
	})

	do.Provide(injector, func(_ do.Injector) (*workpool.Pool, error) {
		return workpool.New(cfg.Pipeline.MaxWorkers), nil
	})

	do.Provide(injector, func(i do.Injector) (*processor.Processor, error) {
		resolver, err := do.Invoke[*strategy.Resolver](i)
		if err != nil {
			return nil, err
		}
		pool := do.MustInvoke[*workpool.Pool](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return processor.New(resolver, pool, metrics, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.Decoder, error) {
		return decode.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.DocumentService, error) {
		proc, err := do.Invoke[*processor.Processor](i)
		if err != nil {
			return nil, err
		}
		decoder := do.MustInvoke[ports.Decoder](i)
		return ingest.NewService(decoder, proc, ingest.Options{
			Timeout:          cfg.Pipeline.Timeout,
			BatchConcurrency: cfg.Pipeline.BatchConcurrency,
		}, logger), nil
	})
}
