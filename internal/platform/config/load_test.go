package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

func TestLoad_LocalProfile(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want \"debug\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want \"text\"", cfg.Log.Format)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false for local")
	}
	if cfg.Pipeline.Override.Storage != "memory" || cfg.Pipeline.Override.Notifier != "log" {
		t.Errorf("Pipeline.Override = %+v, want memory/log for local", cfg.Pipeline.Override)
	}
}

func TestLoad_ProdProfile(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("prod")
	if err != nil {
		t.Fatalf("Load(\"prod\") error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want \"info\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want \"json\"", cfg.Log.Format)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true for prod")
	}
	if cfg.Telemetry.Exporter != "otlp" {
		t.Errorf("Telemetry.Exporter = %q, want \"otlp\"", cfg.Telemetry.Exporter)
	}
	if cfg.Telemetry.Endpoint == "" {
		t.Error("Telemetry.Endpoint is empty, want non-empty for prod")
	}
	if cfg.Storage.Database.DSN == "" {
		t.Error("Storage.Database.DSN is empty, want non-empty for prod")
	}
	if len(cfg.Notify.Queue.Brokers) == 0 {
		t.Error("Notify.Queue.Brokers is empty, want non-empty for prod")
	}
	if cfg.Storage.Redis.URL == "" {
		t.Error("Storage.Redis.URL is empty, want non-empty for prod")
	}
	for _, s := range cfg.Pipeline.Strategies {
		if s.Tag == "metadata" && cfg.Pipeline.StorageKind(s) != "kv" {
			t.Errorf("StorageKind(metadata) = %q, want kv", cfg.Pipeline.StorageKind(s))
		}
	}
}

func TestLoad_StrategyTable(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	byTag := make(map[string]config.StrategyConfig, len(cfg.Pipeline.Strategies))
	for _, s := range cfg.Pipeline.Strategies {
		byTag[s.Tag] = s
	}

	street, ok := byTag["address/street"]
	if !ok {
		t.Fatal("strategy address/street missing from base table")
	}
	if street.StopsOnFailure() || !street.IndependentOfChildren {
		t.Errorf("address/street flags = stop:%v independent:%v, want false/true",
			street.StopsOnFailure(), street.IndependentOfChildren)
	}
	if got := cfg.Pipeline.StorageKind(street); got != "memory" {
		t.Errorf("StorageKind(address/street) = %q, want memory (local override)", got)
	}

	tx := byTag["transaction"]
	if !tx.StopsOnFailure() {
		t.Error("transaction StopsOnFailure() = false, want true")
	}
	if tx.Validator.Min["amount"] != 0 || tx.Validator.Types["amount"] != "number" {
		t.Errorf("transaction validator = %+v", tx.Validator)
	}

	if len(cfg.Pipeline.Rules) == 0 || cfg.Pipeline.Rules[0].Refine[0].Tag != "address/street" {
		t.Errorf("Rules = %+v, want address refinement first", cfg.Pipeline.Rules)
	}
}

func TestLoad_BaseConfigInheritance(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	// These come from base.yaml, not overridden by local.yaml.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want \"0.0.0.0\" (from base)", cfg.Server.Host)
	}
	email := cfg.Notify.Email.Client
	if email.Retry.MaxAttempts != 3 {
		t.Errorf("Notify.Email.Client.Retry.MaxAttempts = %d, want 3 (from base)", email.Retry.MaxAttempts)
	}
	if email.CircuitBreaker.MaxFailures != 5 {
		t.Errorf("Notify.Email.Client.CircuitBreaker.MaxFailures = %d, want 5 (from base)",
			email.CircuitBreaker.MaxFailures)
	}
	if cfg.Pipeline.BatchConcurrency != 4 {
		t.Errorf("Pipeline.BatchConcurrency = %d, want 4 (from base)", cfg.Pipeline.BatchConcurrency)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(*config.Config) (got, want any)
	}{
		{
			name: "top level key",
			env:  map[string]string{"APP_SERVER_PORT": "9090"},
			check: func(c *config.Config) (any, any) {
				return c.Server.Port, 9090
			},
		},
		{
			name: "underscore inside field name",
			env:  map[string]string{"APP_SERVER_READ_TIMEOUT": "15s"},
			check: func(c *config.Config) (any, any) {
				return c.Server.ReadTimeout, 15 * time.Second
			},
		},
		{
			name: "deeply nested client key",
			env:  map[string]string{"APP_NOTIFY_EMAIL_CLIENT_RETRY_MAX_ATTEMPTS": "7"},
			check: func(c *config.Config) (any, any) {
				return c.Notify.Email.Client.Retry.MaxAttempts, 7
			},
		},
		{
			name: "hyphenated section",
			env:  map[string]string{"APP_STORAGE_OBJECT_STORE_BUCKET": "records"},
			check: func(c *config.Config) (any, any) {
				return c.Storage.ObjectStore.Bucket, "records"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir("../../..")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load("local")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got, want := tt.check(cfg); got != want {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_PIPELINE_TIMEOUT", "9s")

	cfg, err := config.Load("local", config.WithOverrides(map[string]any{"pipeline.timeout": "2s"}))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Pipeline.Timeout != 2*time.Second {
		t.Errorf("Pipeline.Timeout = %v, want 2s", cfg.Pipeline.Timeout)
	}
}

func TestLoad_OverridesAreValidated(t *testing.T) {
	t.Chdir("../../..")

	_, err := config.Load("local", config.WithOverrides(map[string]any{"pipeline.timeout": "-1s"}))
	if err == nil || !strings.Contains(err.Error(), "pipeline.timeout must not be negative") {
		t.Fatalf("Load() error = %v, want negative timeout rejected", err)
	}
}

func TestLoad_RejectsProfile(t *testing.T) {
	t.Chdir("../../..")

	tests := []struct {
		profile string
		wantErr string
	}{
		{profile: "", wantErr: "must not be empty"},
		{profile: "  ", wantErr: "must not be empty"},
		{profile: "../secrets", wantErr: "plain file name"},
		{profile: `prod\local`, wantErr: "plain file name"},
		{profile: "nonexistent", wantErr: "loading nonexistent config"},
	}

	for _, tt := range tests {
		_, err := config.Load(tt.profile)
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("Load(%q) error = %v, want containing %q", tt.profile, err, tt.wantErr)
		}
	}
}

func TestValidate_RejectsSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "zero port",
			mutate:  func(c *config.Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *config.Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *config.Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Exporter = "otlp"
			},
			wantErr: "endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validBaseConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_UsedBackendsNeedSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		storage  string
		notifier string
	}{
		{name: "database without dsn", storage: "database", notifier: "none"},
		{name: "object store without bucket", storage: "object-store", notifier: "none"},
		{name: "kv without url", storage: "kv", notifier: "none"},
		{name: "email without recipients", storage: "memory", notifier: "email"},
		{name: "queue without brokers", storage: "memory", notifier: "queue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validBaseConfig()
			cfg.Pipeline.Strategies = []config.StrategyConfig{
				{Tag: "default", Storage: tt.storage, Notifier: tt.notifier},
			}
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate() returned nil, want error")
			}
		})
	}
}

func TestValidate_OverrideHidesUnusedBackends(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Pipeline.Strategies = []config.StrategyConfig{
		{Tag: "default", Storage: "database", Notifier: "queue"},
	}
	cfg.Pipeline.Override = config.OverrideConfig{Storage: "memory", Notifier: "log"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil with in-process overrides", err)
	}
}

func TestValidate_InvalidRule(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Pipeline.Rules = []config.RuleConfig{
		{Field: "address", Tag: "address/default", Refine: []config.RefineConfig{{Tag: "address/street"}}},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for refinement without when_has")
	}
}

func TestStrategyConfig_StopsOnFailureDefaultsTrue(t *testing.T) {
	t.Parallel()

	no := false
	if !(config.StrategyConfig{}).StopsOnFailure() {
		t.Error("StopsOnFailure() = false for omitted flag, want true")
	}
	if (config.StrategyConfig{StopOnFailure: &no}).StopsOnFailure() {
		t.Error("StopsOnFailure() = true for explicit false")
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error for valid config: %v", err)
	}
}

// validBaseConfig returns a Config with all fields set to valid values.
func validBaseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: config.TelemetryConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
		Pipeline: config.PipelineConfig{
			MaxWorkers:       4,
			BatchConcurrency: 2,
			Timeout:          30 * time.Second,
			DefaultTag:       "default",
			Strategies: []config.StrategyConfig{
				{Tag: "default", Storage: "memory", Notifier: "log"},
			},
		},
		Notify: config.NotifyConfig{
			Email: config.EmailConfig{
				Client: config.ClientConfig{
					BaseURL: "http://localhost:8025",
					Timeout: 30 * time.Second,
					Retry: config.RetryConfig{
						MaxAttempts:     3,
						InitialInterval: 100 * time.Millisecond,
						MaxInterval:     10 * time.Second,
						Multiplier:      2.0,
					},
					CircuitBreaker: config.CircuitBreakerConfig{
						MaxFailures:   5,
						Timeout:       30 * time.Second,
						HalfOpenLimit: 1,
					},
				},
			},
		},
	}
}
