// Package storage is the local key-value blob store behind the app. Each key
// holds one JSON document that is overwritten as a whole on every save.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carpenike/repcal/internal/models"
)

// Persisted keys.
const (
	KeyProgram       = "workout-program-data"
	KeyProgress      = "user-workout-progress"
	KeySettings      = "app-settings"
	KeySavedPrograms = "saved-programs"
)

// KV is a string-keyed blob store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error) // models.ErrNotFound when absent
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the blob at key into v. It returns models.ErrNotFound when
// the key is absent and a wrapped decode error when the blob is corrupt.
func GetJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and overwrites the blob at key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return &models.PersistError{Key: key, Err: err}
	}
	return nil
}

// IsNotFound reports whether err means the key was absent.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
