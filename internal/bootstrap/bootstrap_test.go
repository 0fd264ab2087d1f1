package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/do/v2"

	"github.com/jsamuelsen11/layerflow/internal/app/strategy"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/platform/telemetry"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testConfig(storageKind string) *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			MaxWorkers:       2,
			BatchConcurrency: 2,
			Timeout:          5 * time.Second,
			DefaultTag:       "default",
			Rules: []config.RuleConfig{
				{Field: "address", Tag: "address"},
			},
			Strategies: []config.StrategyConfig{
				{
					Tag:         "address",
					Validator:   config.ValidatorConfig{Kind: "schema", Required: []string{"street"}},
					Transformer: config.TransformerConfig{Kind: "rule-based", Ops: []config.TransformOp{{Op: "trim", Field: "street"}}},
					Notifier:    config.NotifierLog,
					Storage:     storageKind,
				},
				{Tag: "default", Notifier: config.NotifierNone, Storage: storageKind},
			},
		},
	}
}

func newInjector(t *testing.T, cfg *config.Config) do.Injector {
	t.Helper()
	injector := do.New()
	do.ProvideValue[*telemetry.Metrics](injector, nil)
	Register(context.Background(), injector, cfg, discardLogger())
	return injector
}

func TestRegister_IngestsWithInProcessBackends(t *testing.T) {
	t.Parallel()

	injector := newInjector(t, testConfig(config.StorageMemory))

	svc, err := do.Invoke[ports.DocumentService](injector)
	if err != nil {
		t.Fatalf("Invoke(DocumentService) error: %v", err)
	}

	report, err := svc.Ingest(context.Background(), domain.RawDocument{
		Name: "doc.json",
		Data: []byte(`{"address": {"street": " 1 Main St "}, "note": {"text": "hi"}}`),
	})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if !report.Completed() {
		t.Fatalf("report not completed: %s", report.Outcome.Reason())
	}
	if report.Recorded != 2 {
		t.Errorf("Recorded = %d, want 2", report.Recorded)
	}

	registry := do.MustInvoke[ports.HealthRegistry](injector)
	if got := registry.CheckAll(context.Background()); len(got) != 0 {
		t.Errorf("CheckAll() = %v, want no checkers for in-process backends", got)
	}
}

func TestRegister_RegistersBackendHealth(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.StorageFile)
	cfg.Storage.File = config.FileConfig{Dir: t.TempDir(), Compression: "none"}
	injector := newInjector(t, cfg)

	if _, err := do.Invoke[ports.DocumentService](injector); err != nil {
		t.Fatalf("Invoke(DocumentService) error: %v", err)
	}

	registry := do.MustInvoke[ports.HealthRegistry](injector)
	got := registry.CheckAll(context.Background())
	if diff := cmp.Diff(map[string]error{"file": nil}, got); diff != "" {
		t.Errorf("CheckAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewCatalog_UnknownKindIsConfigurationError(t *testing.T) {
	t.Parallel()

	cfg := testConfig("tape")
	classifier, err := strategy.NewClassifier(cfg.Pipeline)
	if err != nil {
		t.Fatalf("NewClassifier() error: %v", err)
	}

	backends := &Backends{}
	catalog := NewCatalog(context.Background(), cfg, nil, backends, discardLogger())

	_, err = strategy.NewResolver(classifier, cfg.Pipeline, catalog)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("NewResolver() error = %v, want ErrConfiguration", err)
	}
	if n := len(backends.Checkers()); n != 0 {
		t.Errorf("Checkers() len = %d, want 0", n)
	}
}

func TestBackends_CloseReverseOrder(t *testing.T) {
	t.Parallel()

	var closed []string
	closer := func(name string, err error) func() error {
		return func() error {
			closed = append(closed, name)
			return err
		}
	}

	b := &Backends{}
	b.track(nil, closer("database", nil))
	b.track(nil, closer("kv", errors.New("boom")))
	b.track(nil, closer("queue", nil))

	err := b.Close()
	if err == nil || err.Error() != "boom" {
		t.Errorf("Close() error = %v, want boom", err)
	}
	if diff := cmp.Diff([]string{"queue", "kv", "database"}, closed); diff != "" {
		t.Errorf("close order mismatch (-want +got):\n%s", diff)
	}

	if err := b.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if len(closed) != 3 {
		t.Errorf("closers ran %d times, want 3", len(closed))
	}
}
