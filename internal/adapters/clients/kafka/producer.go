// Package kafka is the message broker client used by the queue notifier.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// ServiceName identifies the broker in health results.
const ServiceName = "kafka"

// Compile-time interface checks.
var (
	_ ports.EventPublisher = (*Producer)(nil)
	_ ports.HealthChecker  = (*Producer)(nil)
)

// Producer publishes records synchronously.
type Producer struct {
	client  *kgo.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewProducer creates a producer for cfg. The client connects lazily; use
// HealthCheck to verify the brokers are reachable.
func NewProducer(cfg config.QueueConfig, logger *slog.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("creating kafka producer: %w",
			&domain.ConfigurationError{Problems: []string{"notify.queue.brokers is required"}})
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.Topic != "" {
		opts = append(opts, kgo.DefaultProduceTopic(cfg.Topic))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.Timeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return &Producer{client: client, timeout: cfg.Timeout, logger: logger}, nil
}

// Publish produces one record and waits for the broker acknowledgement.
// An empty topic uses the configured default topic.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		if errors.Is(err, kgo.ErrClientClosed) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("publishing to %q: %w: %w", topic, domain.ErrUnavailable, err)
		}
		return fmt.Errorf("publishing to %q: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "record published",
		slog.String("topic", rec.Topic),
		slog.Int("partition", int(rec.Partition)),
		slog.Int64("offset", rec.Offset),
	)
	return nil
}

// Name returns the identifier used by the health registry.
func (p *Producer) Name() string {
	return ServiceName
}

// HealthCheck pings the cluster.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ServiceName, err)
	}
	return nil
}

// Close flushes nothing and releases broker connections. Publish is
// synchronous, so no buffered records are lost.
func (p *Producer) Close() {
	p.client.Close()
}
