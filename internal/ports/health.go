package ports

import "context"

// HealthChecker is a backend the readiness probe reports on: a storage
// backend, the queue producer or the mail relay client.
type HealthChecker interface {
	// Name identifies the backend in readiness output, e.g. "database".
	Name() string

	// HealthCheck returns nil when the backend can serve layers. It must
	// give up when ctx is done.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry collects the checkers of the backends in use.
type HealthRegistry interface {
	// Register adds checker. A second checker with the same name is ignored.
	Register(checker HealthChecker)

	// CheckAll runs every check and returns the results by name. A nil
	// value means healthy.
	CheckAll(ctx context.Context) map[string]error
}
