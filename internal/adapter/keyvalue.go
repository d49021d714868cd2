package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/model"
	"github.com/iliyamo/konbase/internal/repository"
)

// settingPrefix must match the key layout of repository.RedisRepo.
const settingPrefix = "system_setting:"

// scanBatch is the COUNT hint for SCAN.
const scanBatch = 200

// kvAdapter reads setting records straight from the key-value store.  It
// walks the keyspace with SCAN so a large store is never blocked.
type kvAdapter struct {
	kv *database.Redis
}

// FromRedis wraps a connected key-value provider.  Close closes it.
func FromRedis(kv *database.Redis) Adapter {
	return &kvAdapter{kv: kv}
}

func (a *kvAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	b, err := a.kv.Client().Get(ctx, settingPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var s model.SystemSetting
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return s.Value, true, nil
}

func (a *kvAdapter) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	rdb := a.kv.Client()
	var keys []string
	iter := rdb.Scan(ctx, 0, settingPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		// Filter here rather than in MATCH so prefix needs no glob escaping.
		if strings.HasPrefix(iter.Val(), settingPrefix+prefix) {
			keys = append(keys, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	out := []Entry{}
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(keys))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok || seen[keys[i]] {
			continue
		}
		seen[keys[i]] = true
		var s model.SystemSetting
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, Entry{Key: s.Key, Value: s.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (a *kvAdapter) GetAll(ctx context.Context) ([]Entry, error) { return a.GetByPrefix(ctx, "") }

func (a *kvAdapter) IsAvailable(ctx context.Context) bool { return a.kv.Ping(ctx) == nil }

func (a *kvAdapter) HealthCheck(ctx context.Context) database.Health { return a.kv.TestConnection(ctx) }

func (a *kvAdapter) Backend() repository.Backend { return repository.BackendRedis }

func (a *kvAdapter) Close() error { return a.kv.Close() }
