package kv

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
)

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), config.RedisConfig{URL: "not a url"}); err == nil {
		t.Fatal("New() error = nil, want parse error")
	}
}

func TestStore_RemoveZeroReceiptMakesNoCall(t *testing.T) {
	t.Parallel()

	// Nothing listens on this address; a network call would fail.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	s := NewWithClient(client, "layerflow:", 0)
	if err := s.Remove(context.Background(), domain.Receipt{}); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if s.Name() != "kv" {
		t.Errorf("Name() = %q, want %q", s.Name(), "kv")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
