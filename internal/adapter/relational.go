package adapter

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
	"github.com/iliyamo/konbase/internal/repository"
)

// dalAdapter serves lookups through DataAccess settings operations.
type dalAdapter struct {
	dal repository.DataAccess
}

// FromDataAccess wraps an existing DataAccess.  Close closes it.
func FromDataAccess(dal repository.DataAccess) Adapter {
	return &dalAdapter{dal: dal}
}

func (a *dalAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := a.dal.GetSystemSetting(ctx, key)
	if err != nil || s == nil {
		return "", false, err
	}
	return s.Value, true, nil
}

func (a *dalAdapter) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	settings, err := a.dal.ListSystemSettings(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return entries(settings), nil
}

func (a *dalAdapter) GetAll(ctx context.Context) ([]Entry, error) { return a.GetByPrefix(ctx, "") }

func (a *dalAdapter) IsAvailable(ctx context.Context) bool { return a.HealthCheck(ctx).Healthy() }

func (a *dalAdapter) HealthCheck(ctx context.Context) database.Health { return a.dal.HealthCheck(ctx) }

func (a *dalAdapter) Backend() repository.Backend { return a.dal.Backend() }

func (a *dalAdapter) Close() error { return a.dal.Close() }

func entries(settings []model.SystemSetting) []Entry {
	out := make([]Entry, len(settings))
	for i, s := range settings {
		out[i] = Entry{Key: s.Key, Value: s.Value}
	}
	return out
}
