//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

func TestProducer_PublishIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcredpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v23.3.3",
		tcredpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		t.Fatalf("starting redpanda: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("seed broker: %v", err)
	}

	p, err := NewProducer(config.QueueConfig{
		Brokers:  []string{broker},
		Topic:    "layer-events",
		ClientID: "layerflow-it",
		Timeout:  30 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewProducer() error = %v", err)
	}
	defer p.Close()

	if err := p.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if err := p.Publish(ctx, "", []byte("trace-1"), []byte(`{"path":"address"}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics("layer-events"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		t.Fatalf("creating consumer: %v", err)
	}
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		t.Fatalf("PollFetches() error = %v", err)
	}
	records := fetches.Records()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if string(records[0].Key) != "trace-1" {
		t.Errorf("key = %q, want %q", records[0].Key, "trace-1")
	}
}
