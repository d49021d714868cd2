package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// storeIndexed claims every index key for id and then runs write in a
// MULTI/EXEC block.  Index keys are unique: if one is already taken the
// keys claimed so far are released and ErrConflict is returned.  Every
// create that needs a lookup other than by primary key goes through here,
// so a record is never written without its index entries.
func (r *RedisRepo) storeIndexed(ctx context.Context, id string, indexKeys []string, write func(p redis.Pipeliner) error) error {
	claimed := make([]string, 0, len(indexKeys))
	for _, key := range indexKeys {
		ok, err := r.rdb.SetNX(ctx, key, id, 0).Result()
		if err != nil {
			r.release(ctx, claimed)
			return err
		}
		if !ok {
			r.release(ctx, claimed)
			return fmt.Errorf("%w: %s already exists", ErrConflict, key)
		}
		claimed = append(claimed, key)
	}
	if _, err := r.rdb.TxPipelined(ctx, write); err != nil {
		r.release(ctx, claimed)
		return err
	}
	return nil
}

// releaseTimeout bounds the cleanup of claimed index keys.  Cleanup runs
// detached from the caller's context: a create that failed because its
// context ended must still give its index keys back.
const releaseTimeout = 5 * time.Second

func (r *RedisRepo) release(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.Error().Err(err).Strs("keys", keys).Msg("release index keys")
	}
}

// lookupIndex resolves an index key to an id; "" when absent.
func (r *RedisRepo) lookupIndex(ctx context.Context, key string) (string, error) {
	id, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

// requireExists stands in for foreign keys: every key must be present.
func (r *RedisRepo) requireExists(ctx context.Context, keys ...string) error {
	n, err := r.rdb.Exists(ctx, keys...).Result()
	if err != nil {
		return err
	}
	if n != int64(len(keys)) {
		return fmt.Errorf("%w: referenced record missing (%s)", ErrInvalid, strings.Join(keys, ", "))
	}
	return nil
}

func setJSON(ctx context.Context, p redis.Pipeliner, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.Set(ctx, key, b, 0)
	return nil
}

// getJSON fetches one JSON record; (nil, nil) when the key is absent.
func getJSON[T any](ctx context.Context, rdb *redis.Client, key string) (*T, error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// scanJSON loads every JSON record under prefix and keeps those accepted
// by keep.  This is a full scan of the entity kind.
func scanJSON[T any](ctx context.Context, rdb *redis.Client, prefix string, keep func(*T) bool) ([]T, error) {
	out := []T{}
	keys, err := rdb.Keys(ctx, prefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return out, err
	}
	vals, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // deleted between KEYS and MGET
		}
		var rec T
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		if keep == nil || keep(&rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// sortByCreated orders oldest first, ties broken by id, matching the
// ORDER BY created_at, id of the relational backend.
func sortByCreated[T any](items []T, key func(T) (time.Time, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi < idj
	})
}

// globEscape quotes KEYS pattern metacharacters.
func globEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`).Replace(s)
}

// Hash field helpers.  Optional values are stored only when set, so an
// absent field reads back as nil.

func putOpt(h map[string]any, field string, v *string) {
	if v != nil {
		h[field] = *v
	}
}

func optField(h map[string]string, field string) *string {
	if v, ok := h[field]; ok {
		return &v
	}
	return nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func timeField(h map[string]string, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, h[field])
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", field, err)
	}
	return t.UTC(), nil
}

func boolField(h map[string]string, field string) bool {
	b, _ := strconv.ParseBool(h[field])
	return b
}
