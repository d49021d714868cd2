package adapter

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/config"
	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/repository"
)

// New builds an adapter for the backend the environment selects.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (Adapter, error) {
	if repository.DetectBackend(cfg) == repository.BackendRedis {
		kv, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return FromRedis(kv), nil
	}
	dal, err := repository.New(ctx, repository.BackendPostgres, cfg, log)
	if err != nil {
		return nil, err
	}
	return FromDataAccess(dal), nil
}

var (
	cachedMu sync.Mutex
	cached   Adapter
)

// Get returns the cached adapter, building it on first use.  Short-lived
// invocations call Cleanup when they finish so the next one starts fresh.
func Get(ctx context.Context, cfg config.Config, log zerolog.Logger) (Adapter, error) {
	cachedMu.Lock()
	defer cachedMu.Unlock()
	if cached != nil {
		return cached, nil
	}
	a, err := New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", string(a.Backend())).Msg("adapter created")
	cached = a
	return a, nil
}

// Cleanup closes and drops the cached adapter.  It is safe to call when
// nothing is cached.
func Cleanup() error {
	cachedMu.Lock()
	defer cachedMu.Unlock()
	if cached == nil {
		return nil
	}
	err := cached.Close()
	cached = nil
	return err
}
