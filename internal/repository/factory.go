package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/config"
	"github.com/iliyamo/konbase/internal/database"
)

// DetectBackend picks the backend the environment asks for: the key-value
// store when REDIS_URL is set, the relational database otherwise.
func DetectBackend(cfg config.Config) Backend {
	if cfg.UseRedis() {
		return BackendRedis
	}
	return BackendPostgres
}

// New builds a DataAccess for backend.  The relational provider connects
// lazily; the key-value provider is pinged before New returns.
func New(ctx context.Context, backend Backend, cfg config.Config, log zerolog.Logger) (DataAccess, error) {
	log = log.With().Str("backend", string(backend)).Logger()
	switch backend {
	case BackendPostgres:
		db, err := database.NewPostgres(database.PostgresConfigFrom(cfg))
		if err != nil {
			return nil, err
		}
		return NewPostgresRepo(db, log), nil
	case BackendRedis:
		kv, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisRepo(kv, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalid, backend)
	}
}

var (
	sharedMu  sync.Mutex
	sharedDAL DataAccess
)

// GetDataAccess returns the process-wide DataAccess, building it on the
// first call with the auto-detected backend.  A failed build is not
// cached, so the next call tries again.
func GetDataAccess(ctx context.Context, cfg config.Config, log zerolog.Logger) (DataAccess, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDAL != nil {
		return sharedDAL, nil
	}
	backend := DetectBackend(cfg)
	dal, err := New(ctx, backend, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", string(backend)).Msg("data access ready")
	sharedDAL = dal
	return dal, nil
}

// ResetDataAccess closes and forgets the shared instance.
func ResetDataAccess() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDAL == nil {
		return nil
	}
	err := sharedDAL.Close()
	sharedDAL = nil
	return err
}
