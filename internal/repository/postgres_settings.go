package repository

import (
	"context"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
)

func (r *PostgresRepo) SetSystemSetting(ctx context.Context, key, value string) (*model.SystemSetting, error) {
	if err := prepareSettingKey(key); err != nil {
		return nil, err
	}
	return database.QueryOne[model.SystemSetting](ctx, r.db,
		`INSERT INTO system_settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		 RETURNING `+settingCols, key, value)
}

func (r *PostgresRepo) GetSystemSetting(ctx context.Context, key string) (*model.SystemSetting, error) {
	return database.QueryOne[model.SystemSetting](ctx, r.db, "SELECT "+settingCols+" FROM system_settings WHERE key = $1", key)
}

func (r *PostgresRepo) ListSystemSettings(ctx context.Context, prefix string) ([]model.SystemSetting, error) {
	return database.Query[model.SystemSetting](ctx, r.db,
		"SELECT "+settingCols+` FROM system_settings WHERE key LIKE $1 ORDER BY key COLLATE "C"`, likePrefix(prefix))
}
