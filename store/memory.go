package store

import (
	"bytes"
	"context"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMemorySize is the capacity of a memory store created with a
// non-positive size.
const DefaultMemorySize = 256

// Memory is a bounded in-process store that evicts the least recently used
// artifact.
type Memory struct {
	cache *lru.Cache
}

// NewMemory returns a memory store holding up to size artifacts.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Memory{cache: cache}, nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v.([]byte)), nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	m.cache.Add(key, bytes.Clone(data))
	return nil
}

// Len returns the number of cached artifacts.
func (m *Memory) Len() int {
	return m.cache.Len()
}
