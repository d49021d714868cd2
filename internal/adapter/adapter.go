// Package adapter is a read-oriented key/value view over the configured
// backend.  Consumers that only need settings-style lookups (the setup
// wizard, serverless handlers) use it instead of the full DataAccess.
//
// Keys are system setting keys.  Both implementations return the same
// entries for the same stored data.
package adapter

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/repository"
)

// Entry is one key with its value.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Adapter interface {
	// Get returns the value stored under key; ok is false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// GetByPrefix returns every entry whose key starts with prefix,
	// ordered by key.
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	GetAll(ctx context.Context) ([]Entry, error)
	// IsAvailable reports whether the backend answers.  Any failure,
	// including a cancelled context, is false.
	IsAvailable(ctx context.Context) bool
	HealthCheck(ctx context.Context) database.Health
	Backend() repository.Backend
	Close() error
}
