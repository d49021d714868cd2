package migrations

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/database"
)

const createBookkeeping = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps bookkeeping in the schema_migrations table.  Each
// script runs in the same transaction as its bookkeeping row, so a version
// is recorded if and only if its schema change committed.
type PostgresStore struct {
	db *database.Postgres
}

func NewPostgresStore(db *database.Postgres) *PostgresStore { return &PostgresStore{db: db} }

// NewPostgresRunner is a Runner over the embedded scripts, recording into
// db's schema_migrations table.
func NewPostgresRunner(db *database.Postgres, log zerolog.Logger) (*Runner, error) {
	ms, err := Embedded()
	if err != nil {
		return nil, err
	}
	return New(NewPostgresStore(db), ms, log)
}

func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	_, err := s.db.Exec(ctx, createBookkeeping)
	return err
}

func (s *PostgresStore) AppliedVersions(ctx context.Context) ([]string, error) {
	row, err := s.db.ExecuteQuerySingle(ctx, "SELECT to_regclass('schema_migrations') IS NOT NULL AS present")
	if err != nil {
		return nil, err
	}
	if present, _ := row["present"].(bool); !present {
		return []string{}, nil
	}
	type applied struct {
		Version string `db:"version"`
	}
	rows, err := database.Query[applied](ctx, s.db, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Version
	}
	return out, nil
}

func (s *PostgresStore) Apply(ctx context.Context, m Migration) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, m.Up); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.Version, m.Name)
		return err
	})
}

func (s *PostgresStore) Revert(ctx context.Context, m Migration) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, m.Down); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", m.Version)
		return err
	})
}
