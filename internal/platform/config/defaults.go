package config

const (
	defaultServerPort   = 8080
	defaultMaxBodyBytes = 1 << 20

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultMaxWorkers       = 8
	defaultBatchConcurrency = 4

	defaultDatabaseMaxConns = 10
	defaultRedisPoolSize    = 10
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":           "0.0.0.0",
		"server.port":           defaultServerPort,
		"server.read_timeout":   "5s",
		"server.write_timeout":  "30s",
		"server.idle_timeout":   "120s",
		"server.max_body_bytes": defaultMaxBodyBytes,

		"log.level":  "info",
		"log.format": "json",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "layerflow",

		"pipeline.max_workers":       defaultMaxWorkers,
		"pipeline.batch_concurrency": defaultBatchConcurrency,
		"pipeline.timeout":           "30s",
		"pipeline.default_tag":       "default",

		"storage.object_store.region":      "us-east-1",
		"storage.database.max_conns":       defaultDatabaseMaxConns,
		"storage.database.migrate":         true,
		"storage.database.connect_timeout": "5s",
		"storage.redis.pool_size":          defaultRedisPoolSize,
		"storage.redis.dial_timeout":       "5s",
		"storage.redis.read_timeout":       "3s",
		"storage.redis.write_timeout":      "3s",
		"storage.redis.key_prefix":         "layerflow:",
		"storage.file.dir":                 "data/layers",
		"storage.file.compression":         "none",

		"notify.email.client.base_url":                        "http://localhost:8025",
		"notify.email.client.timeout":                         "10s",
		"notify.email.client.retry.max_attempts":              defaultRetryMaxAttempts,
		"notify.email.client.retry.initial_interval":          "100ms",
		"notify.email.client.retry.max_interval":              "5s",
		"notify.email.client.retry.multiplier":                defaultRetryMultiplier,
		"notify.email.client.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"notify.email.client.circuit_breaker.timeout":         "30s",
		"notify.email.client.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"notify.email.from":                                   "layerflow@localhost",
		"notify.email.subject_prefix":                         "[layerflow]",
		"notify.queue.topic":                                  "layer-events",
		"notify.queue.client_id":                              "layerflow",
		"notify.queue.timeout":                                "10s",
	}
}
