// Package config provides configuration loading and validation for the service.
// Configuration is loaded from YAML files with environment variable overrides
// using a layered system: defaults -> base.yaml -> {profile}.yaml -> env vars
// -> caller overrides.
//
// Besides the server and ambient sections, the configuration carries the
// pipeline: classification rules and the strategy table that maps each tag to
// its validator, transformer, notifier, storage backend and policy flags.
package config

import "time"

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Storage   StorageConfig   `koanf:"storage"`
	Notify    NotifyConfig    `koanf:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ClientConfig holds downstream HTTP client settings.
type ClientConfig struct {
	BaseURL        string               `koanf:"base_url"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig holds retry policy settings with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig holds client-side rate limiting. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// PipelineConfig holds the layer-processing engine settings.
type PipelineConfig struct {
	// MaxWorkers bounds concurrently dispatched layer visits per process.
	MaxWorkers int `koanf:"max_workers"`
	// BatchConcurrency bounds documents processed at once by a batch.
	BatchConcurrency int `koanf:"batch_concurrency"`
	// Timeout is the deadline around one document's processing. Zero
	// means no deadline.
	Timeout time.Duration `koanf:"timeout"`
	// DefaultTag is the catch-all classification tag.
	DefaultTag string           `koanf:"default_tag"`
	Rules      []RuleConfig     `koanf:"rules"`
	Strategies []StrategyConfig `koanf:"strategies"`
	// Override replaces the storage or notifier kind of every strategy.
	// Profiles use it to run the production table against in-process
	// backends.
	Override OverrideConfig `koanf:"override"`
}

// OverrideConfig holds profile-wide kind overrides. Empty means no override.
type OverrideConfig struct {
	Storage  string `koanf:"storage"`
	Notifier string `koanf:"notifier"`
}

// StorageKind returns the storage kind for s after applying the override.
func (p *PipelineConfig) StorageKind(s StrategyConfig) string {
	if p.Override.Storage != "" {
		return p.Override.Storage
	}
	return s.Storage
}

// NotifierKind returns the notifier kind for s after applying the override.
func (p *PipelineConfig) NotifierKind(s StrategyConfig) string {
	if p.Override.Notifier != "" {
		return p.Override.Notifier
	}
	return s.Notifier
}

// RuleConfig classifies layers appearing under Field. Refinements are tried
// in order; the first whose WhenHas fields are all present wins, otherwise
// Tag applies.
type RuleConfig struct {
	Field  string         `koanf:"field"`
	Tag    string         `koanf:"tag"`
	Refine []RefineConfig `koanf:"refine"`
}

// RefineConfig is a second classification pass over a layer's own fields.
type RefineConfig struct {
	WhenHas []string `koanf:"when_has"`
	Tag     string   `koanf:"tag"`
}

// StrategyConfig is one row of the strategy table.
type StrategyConfig struct {
	Tag                   string            `koanf:"tag"`
	Validator             ValidatorConfig   `koanf:"validator"`
	Transformer           TransformerConfig `koanf:"transformer"`
	Notifier              string            `koanf:"notifier"`
	Storage               string            `koanf:"storage"`
	IndependentOfChildren bool              `koanf:"independent_of_children"`
	// StopOnFailure defaults to true when omitted.
	StopOnFailure *bool `koanf:"stop_on_failure"`
}

// StopsOnFailure resolves the StopOnFailure default.
func (s StrategyConfig) StopsOnFailure() bool {
	return s.StopOnFailure == nil || *s.StopOnFailure
}

// ValidatorConfig describes the rules a "schema" validator enforces.
type ValidatorConfig struct {
	Kind      string   `koanf:"kind"`
	Required  []string `koanf:"required"`
	Allowed   []string `koanf:"allowed"`
	Forbidden []string `koanf:"forbidden"`
	// AllowSublayers defaults to true when omitted.
	AllowSublayers   *bool              `koanf:"allow_sublayers"`
	AllowedSublayers []string           `koanf:"allowed_sublayers"`
	Types            map[string]string  `koanf:"types"`
	Min              map[string]float64 `koanf:"min"`
	Max              map[string]float64 `koanf:"max"`
}

// TransformerConfig selects and parameterizes a transformer.
type TransformerConfig struct {
	Kind string `koanf:"kind"`
	// Model names the registered record type used by the reflective kind.
	Model string        `koanf:"model"`
	Ops   []TransformOp `koanf:"ops"`
}

// TransformOp is one step of a rule-based transformation.
type TransformOp struct {
	Op    string `koanf:"op"`
	Field string `koanf:"field"`
	To    string `koanf:"to"`
	Value any    `koanf:"value"`
}

// StorageConfig holds settings for every storage backend. Only backends
// referenced by a strategy are validated and connected.
type StorageConfig struct {
	ObjectStore ObjectStoreConfig `koanf:"object_store"`
	Database    DatabaseConfig    `koanf:"database"`
	Redis       RedisConfig       `koanf:"redis"`
	File        FileConfig        `koanf:"file"`
}

// ObjectStoreConfig holds S3-compatible object store settings.
type ObjectStoreConfig struct {
	Bucket          string `koanf:"bucket"`
	Prefix          string `koanf:"prefix"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	UsePathStyle    bool   `koanf:"use_path_style"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	DSN            string        `koanf:"dsn"`
	MaxConns       int32         `koanf:"max_conns"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	Migrate        bool          `koanf:"migrate"`
}

// RedisConfig holds Redis settings for the key-value backend.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	KeyPrefix    string        `koanf:"key_prefix"`
	TTL          time.Duration `koanf:"ttl"`
}

// FileConfig holds local file backend settings.
type FileConfig struct {
	Dir         string `koanf:"dir"`
	Compression string `koanf:"compression"`
}

// NotifyConfig holds settings for notifier backends.
type NotifyConfig struct {
	Email EmailConfig `koanf:"email"`
	Queue QueueConfig `koanf:"queue"`
}

// EmailConfig holds the mail relay client and message settings.
type EmailConfig struct {
	Client        ClientConfig `koanf:"client"`
	Token         string       `koanf:"token"`
	From          string       `koanf:"from"`
	To            []string     `koanf:"to"`
	SubjectPrefix string       `koanf:"subject_prefix"`
}

// QueueConfig holds Kafka producer settings.
type QueueConfig struct {
	Brokers  []string      `koanf:"brokers"`
	Topic    string        `koanf:"topic"`
	ClientID string        `koanf:"client_id"`
	Timeout  time.Duration `koanf:"timeout"`
}
