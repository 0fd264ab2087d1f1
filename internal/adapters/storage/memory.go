package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

// Memory keeps records in process. The local profile and tests use it in
// place of the networked backends.
type Memory struct {
	mu      sync.Mutex
	records map[string][]byte
	order   []string
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Store(_ context.Context, layer domain.TransformedLayer) (domain.Receipt, error) {
	data, err := Encode(layer)
	if err != nil {
		return domain.Receipt{}, err
	}
	key := Key(layer)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; !ok {
		m.order = append(m.order, key)
	}
	m.records[key] = data
	return domain.Receipt{Backend: m.Name(), Key: key, Size: len(data)}, nil
}

func (m *Memory) Remove(_ context.Context, receipt domain.Receipt) error {
	if receipt.IsZero() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[receipt.Key]; !ok {
		return nil
	}
	delete(m.records, receipt.Key)
	m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == receipt.Key })
	return nil
}

// Get returns a copy of the record stored under key.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.records[key]
	return slices.Clone(data), ok
}

// Keys returns the stored keys in insertion order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
