package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a key, user or backup does not exist.
var ErrNotFound = errors.New("not found")

// KV is per-user keyed blob storage. A single writer owns each key and the
// last write wins.
type KV interface {
	// Get returns the blob stored under key for user, or ErrNotFound.
	Get(ctx context.Context, user, key string) ([]byte, error)

	// Set stores blob under key for user, replacing any previous value.
	Set(ctx context.Context, user, key string, blob []byte) error

	// Delete removes key for user. Deleting a missing key is not an error.
	Delete(ctx context.Context, user, key string) error

	// Close releases the backend.
	Close() error
}

// Backend names accepted by the store.backend setting.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

func checkKey(user, key string) error {
	if strings.TrimSpace(user) == "" {
		return fmt.Errorf("store: empty user id")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("store: empty key")
	}
	return nil
}
