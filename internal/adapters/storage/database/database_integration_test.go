//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

func TestStore_PostgresIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("layerflow"),
		tcpostgres.WithUsername("layerflow"),
		tcpostgres.WithPassword("layerflow"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	s, err := New(ctx, config.DatabaseConfig{
		DSN:            dsn,
		MaxConns:       4,
		ConnectTimeout: 5 * time.Second,
		Migrate:        true,
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	// Migrations are idempotent.
	if err := Migrate(ctx, s.pool); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	layer := domain.TransformedLayer{
		TraceID: uuid.New(),
		Path:    "transactions[0]",
		Tag:     "transaction",
		Name:    "transactions",
		Order:   []string{"amount"},
		Fields:  map[string]any{"amount": 10.0},
	}
	receipt, err := s.Store(ctx, layer)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM layer_records WHERE trace_id = $1", layer.TraceID,
	).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	for range 2 {
		if err := s.Remove(ctx, receipt); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
	}
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM layer_records WHERE trace_id = $1", layer.TraceID,
	).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 0 {
		t.Errorf("rows after Remove = %d, want 0", count)
	}

	if err := s.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
