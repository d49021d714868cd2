// Package testutil provides throwaway backends for tests.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/migrations"
)

// PostgresEnv names the variable holding the integration database URL.
const PostgresEnv = "KONBASE_TEST_DATABASE_URL"

// Postgres returns a provider whose search_path points at a fresh schema
// that is dropped when the test ends.  The test is skipped when no
// integration database is configured.
func Postgres(t *testing.T) *database.Postgres {
	t.Helper()
	raw := os.Getenv(PostgresEnv)
	if raw == "" {
		t.Skip(PostgresEnv + " not set")
	}
	ctx := context.Background()

	admin, err := database.NewPostgres(database.PostgresConfig{URL: raw})
	if err != nil {
		t.Fatalf("admin provider: %v", err)
	}
	schema := "konbase_test_" + uuid.NewString()[:8]
	if _, err := admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %q", schema)); err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", PostgresEnv, err)
	}
	q := u.Query()
	q.Set("search_path", schema+",public")
	u.RawQuery = q.Encode()

	p, err := database.NewPostgres(database.PostgresConfig{URL: u.String(), MaxConns: 4, AcquireTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	t.Cleanup(func() {
		p.Close()
		_, _ = admin.Exec(ctx, fmt.Sprintf("DROP SCHEMA %q CASCADE", schema))
		admin.Close()
	})
	return p
}

// MigratedPostgres is Postgres with every embedded migration applied.
func MigratedPostgres(t *testing.T) *database.Postgres {
	t.Helper()
	p := Postgres(t)
	r, err := migrations.NewPostgresRunner(p, zerolog.Nop())
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return p
}

// Redis starts an in-process Redis server and returns a connected provider
// along with the server, which tests may use to inspect keys or simulate
// an outage.
func Redis(t *testing.T) (*database.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := database.NewRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}
