// Package kv stores layer records as Redis string values.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen11/layerflow/internal/adapters/storage"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Name is the storage kind.
const Name = "kv"

// Compile-time interface checks.
var (
	_ ports.StorageHandler = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
)

// Store writes one key per layer: <key_prefix><trace_id>/<path>.
type Store struct {
	client redis.Cmdable
	closer func() error
	prefix string
	ttl    time.Duration
}

// New connects to cfg.URL and verifies the connection.
func New(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	s := NewWithClient(client, cfg.KeyPrefix, cfg.TTL)
	s.closer = client.Close
	return s, nil
}

// NewWithClient returns a store over an existing client. A zero ttl keeps
// records until removed.
func NewWithClient(client redis.Cmdable, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) Name() string { return Name }

func (s *Store) Store(ctx context.Context, layer domain.TransformedLayer) (domain.Receipt, error) {
	data, err := storage.Encode(layer)
	if err != nil {
		return domain.Receipt{}, err
	}

	key := s.prefix + storage.Key(layer)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return domain.Receipt{}, fmt.Errorf("setting %s: %w", key, err)
	}
	return domain.Receipt{Backend: Name, Key: key, Size: len(data)}, nil
}

// Remove deletes the key. DEL on a missing key succeeds.
func (s *Store) Remove(ctx context.Context, receipt domain.Receipt) error {
	if receipt.IsZero() {
		return nil
	}
	if err := s.client.Del(ctx, receipt.Key).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", receipt.Key, err)
	}
	return nil
}

// HealthCheck pings the server.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close closes connections opened by New.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
