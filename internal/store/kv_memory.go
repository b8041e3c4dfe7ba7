package store

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryKV keeps blobs in process memory. Used by tests and --ephemeral
// sessions; nothing survives the process.
type MemoryKV struct {
	c *cache.Cache
}

// NewMemoryKV returns an empty in-memory KV with no expiration.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{c: cache.New(cache.NoExpiration, 0)}
}

func memoryKey(user, key string) string {
	return user + "\x00" + key
}

func (m *MemoryKV) Get(_ context.Context, user, key string) ([]byte, error) {
	if err := checkKey(user, key); err != nil {
		return nil, err
	}
	v, ok := m.c.Get(memoryKey(user, key))
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v.([]byte)...), nil
}

func (m *MemoryKV) Set(_ context.Context, user, key string, blob []byte) error {
	if err := checkKey(user, key); err != nil {
		return err
	}
	m.c.Set(memoryKey(user, key), append([]byte(nil), blob...), cache.NoExpiration)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, user, key string) error {
	if err := checkKey(user, key); err != nil {
		return err
	}
	m.c.Delete(memoryKey(user, key))
	return nil
}

func (m *MemoryKV) Close() error {
	m.c.Flush()
	return nil
}
