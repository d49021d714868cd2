package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/database"
)

// PostgresRepo implements DataAccess with parameterized SQL.  Each method
// is one statement in autocommit mode; ON DELETE CASCADE and UNIQUE
// constraints in the schema do the bookkeeping RedisRepo does by hand.
type PostgresRepo struct {
	db  *database.Postgres
	log zerolog.Logger
}

func NewPostgresRepo(db *database.Postgres, log zerolog.Logger) *PostgresRepo {
	return &PostgresRepo{db: db, log: log}
}

func (r *PostgresRepo) Backend() Backend { return BackendPostgres }

// DB exposes the provider, for the migration runner and tooling.
func (r *PostgresRepo) DB() *database.Postgres { return r.db }

// Enum and citext columns are cast to text so they scan into plain strings.
const (
	userCols        = "id, email::text AS email, password_hash, role::text AS role, created_at"
	profileCols     = "id, first_name, last_name, display_name, two_factor_enabled, totp_secret, recovery_keys, created_at"
	associationCols = "id, name, description, email, phone, website, address, settings, created_at"
	memberCols      = "id, association_id, profile_id, role::text AS role, created_at"
	conventionCols  = "id, association_id, name, description, start_date, end_date, location, status::text AS status, created_at"
	convMemberCols  = "id, convention_id, profile_id, role::text AS role, created_at"
	itemCols        = "id, association_id, name, description, serial_number, barcode, category_id, location_id, condition::text AS condition, purchase_date, purchase_price, warranty_expires, created_at"
	setCols         = "id, association_id, name, description, created_at"
	setItemCols     = "id, set_id, item_id, quantity, created_at"
	settingCols     = "key, value, updated_at"
	auditCols       = "id, association_id, profile_id, action, entity_type, entity_id, details, created_at"
)

// validID reports whether id can be a uuid column value.  Anything else
// cannot match a row, so lookups short-circuit to not-found instead of
// surfacing a driver encoding error.
func validID(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

func (r *PostgresRepo) HealthCheck(ctx context.Context) database.Health {
	h := r.db.TestConnection(ctx)
	if !h.Healthy() {
		r.log.Warn().Str("backend", string(BackendPostgres)).Str("error", h.Error).Msg("health check failed")
	}
	return h
}

func (r *PostgresRepo) ExecuteQuery(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	return r.db.ExecuteQuery(ctx, sql, args...)
}

func (r *PostgresRepo) ExecuteQuerySingle(ctx context.Context, sql string, args ...any) (map[string]any, error) {
	return r.db.ExecuteQuerySingle(ctx, sql, args...)
}

func (r *PostgresRepo) Close() error {
	r.db.Close()
	return nil
}

// likePrefix escapes LIKE metacharacters in p and appends a wildcard.
func likePrefix(p string) string {
	p = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(p)
	return p + "%"
}
