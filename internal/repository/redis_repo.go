package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/database"
)

// Key layout.  Entities that are only ever fetched by id are hashes;
// entities listed by a parent id are JSON strings found by prefix scan.
// Secondary lookups go through index keys that map a value to an id.
const (
	userPrefix        = "user:"               // hash
	userEmailIndex    = "users:email:"        // email -> user id
	profilePrefix     = "profile:"            // hash, keyed by user id
	profileClaimIndex = "profiles:claim:"     // user id -> user id, one profile per user
	associationPrefix = "association:"        // hash
	memberPrefix      = "association_member:" // JSON
	memberPairIndex   = "association_members:pair:"
	conventionPrefix  = "convention:" // JSON
	convMemberPrefix  = "convention_member:"
	convMemberPairIdx = "convention_members:pair:"
	itemPrefix        = "item:"
	setPrefix         = "equipment_set:"
	setItemPrefix     = "equipment_set_item:"
	setItemPairIndex  = "equipment_set_items:pair:"
	settingPrefix     = "system_setting:"
	auditPrefix       = "audit_log:"
)

// RedisRepo implements DataAccess on a key-value store.
//
// Redis has no foreign keys, unique constraints or cascades, so this type
// maintains index keys itself (see storeIndexed) and DeleteUser removes
// dependent records explicitly.  List operations enumerate every key under
// an entity prefix with KEYS and filter client side: cost grows with the
// total number of entities of that kind, not with the size of the result.
//
// created_at is stamped from the application clock, not the server.
type RedisRepo struct {
	kv  *database.Redis
	rdb *redis.Client
	log zerolog.Logger
	now func() time.Time
}

func NewRedisRepo(kv *database.Redis, log zerolog.Logger) *RedisRepo {
	return &RedisRepo{kv: kv, rdb: kv.Client(), log: log, now: time.Now}
}

func (r *RedisRepo) Backend() Backend { return BackendRedis }

// Client exposes the raw client, for the unified adapter.
func (r *RedisRepo) Client() *redis.Client { return r.rdb }

func (r *RedisRepo) HealthCheck(ctx context.Context) database.Health {
	h := r.kv.TestConnection(ctx)
	if !h.Healthy() {
		r.log.Warn().Str("backend", string(BackendRedis)).Str("error", h.Error).Msg("health check failed")
	}
	return h
}

func (r *RedisRepo) ExecuteQuery(context.Context, string, ...any) ([]map[string]any, error) {
	return nil, fmt.Errorf("ExecuteQuery: %w", ErrUnsupported)
}

func (r *RedisRepo) ExecuteQuerySingle(context.Context, string, ...any) (map[string]any, error) {
	return nil, fmt.Errorf("ExecuteQuerySingle: %w", ErrUnsupported)
}

func (r *RedisRepo) Close() error { return r.kv.Close() }

// stamp returns the creation time for a new record.
func (r *RedisRepo) stamp() time.Time { return dbTime(r.now()) }

// newID builds "<prefix>_<unix millis>_<random hex>".
func (r *RedisRepo) newID(prefix string) (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d_%s", prefix, r.now().UnixMilli(), hex.EncodeToString(b)), nil
}
