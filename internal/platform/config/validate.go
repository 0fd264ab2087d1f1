package config

import (
	"errors"
	"fmt"
	"slices"
)

// Storage and notifier kinds that need a backend section to be valid.
const (
	StorageObjectStore = "object-store"
	StorageDatabase    = "database"
	StorageKV          = "kv"
	StorageFile        = "file"
	StorageMemory      = "memory"
	StorageNone        = "none"

	NotifierEmail = "email"
	NotifierQueue = "queue"
	NotifierLog   = "log"
	NotifierNone  = "none"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Telemetry.validate(),
		c.Pipeline.validate(),
		c.Storage.validate(c.Pipeline.storageKinds()),
		c.Notify.validate(c.Pipeline.notifierKinds()),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if s.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text", "console":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text, console; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (cl *ClientConfig) validate(prefix string) error {
	var errs []error

	if cl.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s.base_url must not be empty", prefix))
	}
	if cl.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s.timeout must be positive", prefix))
	}
	if cl.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s.retry.max_attempts must be >= 1, got %d", prefix, cl.Retry.MaxAttempts))
	}
	if cl.Retry.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("%s.retry.multiplier must be positive, got %f", prefix, cl.Retry.Multiplier))
	}
	if cl.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("%s.circuit_breaker.max_failures must be >= 1, got %d",
			prefix, cl.CircuitBreaker.MaxFailures))
	}
	if cl.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("%s.rate_limit.requests_per_second must not be negative", prefix))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}

// validate checks the pipeline's scalar settings and the shape of the rule
// and strategy tables. Whether every tag resolves to a known kind is checked
// when strategies are built, because the kind catalog lives outside config.
func (p *PipelineConfig) validate() error {
	var errs []error

	if p.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("pipeline.max_workers must be >= 1, got %d", p.MaxWorkers))
	}
	if p.BatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("pipeline.batch_concurrency must be >= 1, got %d", p.BatchConcurrency))
	}
	if p.Timeout < 0 {
		errs = append(errs, errors.New("pipeline.timeout must not be negative"))
	}
	if p.DefaultTag == "" {
		errs = append(errs, errors.New("pipeline.default_tag must not be empty"))
	}

	for i, r := range p.Rules {
		if r.Field == "" {
			errs = append(errs, fmt.Errorf("pipeline.rules[%d].field must not be empty", i))
		}
		if r.Tag == "" {
			errs = append(errs, fmt.Errorf("pipeline.rules[%d].tag must not be empty", i))
		}
		for j, ref := range r.Refine {
			if ref.Tag == "" || len(ref.WhenHas) == 0 {
				errs = append(errs, fmt.Errorf("pipeline.rules[%d].refine[%d] needs a tag and when_has", i, j))
			}
		}
	}

	for i, s := range p.Strategies {
		if s.Tag == "" {
			errs = append(errs, fmt.Errorf("pipeline.strategies[%d].tag must not be empty", i))
		}
	}

	return errors.Join(errs...)
}

func (p *PipelineConfig) storageKinds() []string {
	kinds := make([]string, 0, len(p.Strategies))
	for _, s := range p.Strategies {
		kinds = append(kinds, p.StorageKind(s))
	}
	return kinds
}

func (p *PipelineConfig) notifierKinds() []string {
	kinds := make([]string, 0, len(p.Strategies))
	for _, s := range p.Strategies {
		kinds = append(kinds, p.NotifierKind(s))
	}
	return kinds
}

func (s *StorageConfig) validate(used []string) error {
	var errs []error

	if slices.Contains(used, StorageObjectStore) && s.ObjectStore.Bucket == "" {
		errs = append(errs, errors.New("storage.object_store.bucket must not be empty when object-store is used"))
	}
	if slices.Contains(used, StorageDatabase) {
		if s.Database.DSN == "" {
			errs = append(errs, errors.New("storage.database.dsn must not be empty when database is used"))
		}
		if s.Database.MaxConns < 1 {
			errs = append(errs, fmt.Errorf("storage.database.max_conns must be >= 1, got %d", s.Database.MaxConns))
		}
	}
	if slices.Contains(used, StorageKV) && s.Redis.URL == "" {
		errs = append(errs, errors.New("storage.redis.url must not be empty when kv is used"))
	}
	if slices.Contains(used, StorageFile) {
		if s.File.Dir == "" {
			errs = append(errs, errors.New("storage.file.dir must not be empty when file is used"))
		}
		switch s.File.Compression {
		case "none", "zstd":
			// Valid compressions.
		default:
			errs = append(errs, fmt.Errorf("storage.file.compression must be one of: none, zstd; got %q",
				s.File.Compression))
		}
	}

	return errors.Join(errs...)
}

func (n *NotifyConfig) validate(used []string) error {
	var errs []error

	if slices.Contains(used, NotifierEmail) {
		errs = append(errs, n.Email.Client.validate("notify.email.client"))
		if len(n.Email.To) == 0 {
			errs = append(errs, errors.New("notify.email.to must not be empty when email is used"))
		}
	}
	if slices.Contains(used, NotifierQueue) {
		if len(n.Queue.Brokers) == 0 {
			errs = append(errs, errors.New("notify.queue.brokers must not be empty when queue is used"))
		}
		if n.Queue.Topic == "" {
			errs = append(errs, errors.New("notify.queue.topic must not be empty when queue is used"))
		}
	}

	return errors.Join(errs...)
}
