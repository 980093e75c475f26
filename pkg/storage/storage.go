// Package storage persists the console's session keys. It plays the role a
// browser's local storage plays for the web dashboard.
package storage

import (
	"context"
	"fmt"

	"github.com/shehrozeikram/SGCEducation-sub002/pkg/config"
)

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Open returns the store selected by configuration.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		return NewMemoryStore(), nil
	case config.SessionStoreRedis:
		client, err := NewRedis(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect session redis: %w", err)
		}
		return NewRedisStore(client, cfg.Session.KeyPrefix), nil
	default:
		return NewFileStore(cfg.Session.File)
	}
}
