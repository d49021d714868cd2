package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/iliyamo/konbase/internal/model"
)

func (r *RedisRepo) SetSystemSetting(ctx context.Context, key, value string) (*model.SystemSetting, error) {
	if err := prepareSettingKey(key); err != nil {
		return nil, err
	}
	s := model.SystemSetting{Key: key, Value: value, UpdatedAt: r.stamp()}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.Set(ctx, settingPrefix+key, b, 0).Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisRepo) GetSystemSetting(ctx context.Context, key string) (*model.SystemSetting, error) {
	return getJSON[model.SystemSetting](ctx, r.rdb, settingPrefix+key)
}

func (r *RedisRepo) ListSystemSettings(ctx context.Context, prefix string) ([]model.SystemSetting, error) {
	settings, err := scanJSON[model.SystemSetting](ctx, r.rdb, settingPrefix+globEscape(prefix), nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}
