// Package database stores layer records as rows of a PostgreSQL table.
//
// The schema is embedded and applied with goose when migrations are enabled:
//
//	layer_records(trace_id, path, tag, name, fields jsonb, created_at)
package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jsamuelsen11/layerflow/internal/adapters/storage"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Name is the storage kind.
const Name = "database"

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// Compile-time interface checks.
var (
	_ ports.StorageHandler = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
	_ execer               = (*pgxpool.Pool)(nil)
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

const (
	insertRecord = `
		INSERT INTO layer_records (trace_id, path, tag, name, fields)
		VALUES ($1, $2, $3, $4, $5)`

	deleteRecord = `
		DELETE FROM layer_records
		WHERE trace_id = $1 AND path = $2`
)

// Store writes one row per layer.
type Store struct {
	db     execer
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to cfg.DSN, pings the server and applies migrations when
// cfg.Migrate is set.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if cfg.Migrate {
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.InfoContext(ctx, "database migrations applied")
	}

	return &Store{db: pool, pool: pool, logger: logger}, nil
}

// Migrate applies the embedded migrations through a database/sql handle
// borrowed from pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

func (s *Store) Name() string { return Name }

// Store inserts the row. A single INSERT is atomic, so a failure leaves
// nothing to compensate.
func (s *Store) Store(ctx context.Context, layer domain.TransformedLayer) (domain.Receipt, error) {
	fields, err := storage.EncodeFields(layer)
	if err != nil {
		return domain.Receipt{}, err
	}

	if _, err := s.db.Exec(ctx, insertRecord,
		layer.TraceID, layer.Path, layer.Tag, layer.Name, fields,
	); err != nil {
		return domain.Receipt{}, fmt.Errorf("inserting record %s: %w", layer.Path, err)
	}
	return domain.Receipt{Backend: Name, Key: storage.Key(layer), Size: len(fields)}, nil
}

// Remove deletes the row named by receipt. Deleting a missing row succeeds.
func (s *Store) Remove(ctx context.Context, receipt domain.Receipt) error {
	if receipt.IsZero() {
		return nil
	}
	traceID, path, err := storage.SplitKey(receipt.Key)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, deleteRecord, traceID, path)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", receipt.Key, err)
	}
	s.logger.DebugContext(ctx, "record deleted",
		slog.String("key", receipt.Key),
		slog.Int64("rows", tag.RowsAffected()),
	)
	return nil
}

// HealthCheck pings the server.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", Name, err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
