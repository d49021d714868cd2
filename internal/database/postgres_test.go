package database

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgres_RequiresURL(t *testing.T) {
	_, err := NewPostgres(PostgresConfig{})
	require.ErrorIs(t, err, ErrMissingPostgresURL)
}

func TestNewPostgres_Defaults(t *testing.T) {
	p, err := NewPostgres(PostgresConfig{URL: "postgres://u:p@localhost:5432/db"})
	require.NoError(t, err)
	assert.Equal(t, int32(20), p.MaxConns())
	assert.Nil(t, p.Stat(), "pool must not exist before first use")
}

func TestPostgresTestConnection_UnreachableIsUnhealthy(t *testing.T) {
	p, err := NewPostgres(PostgresConfig{
		URL:            "postgres://u:p@127.0.0.1:1/db?sslmode=disable",
		AcquireTimeout: 500 * time.Millisecond,
	})
	require.NoError(t, err)
	defer p.Close()

	h := p.TestConnection(context.Background())
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.NotEmpty(t, h.Error)
}

func TestPostgresPool_ProductionRelaxesTLS(t *testing.T) {
	p, err := NewPostgres(PostgresConfig{URL: "postgres://u:p@db.example.com:5432/db?sslmode=verify-full", Production: true})
	require.NoError(t, err)
	pool, err := p.Pool()
	require.NoError(t, err)
	defer p.Close()

	tlsCfg := pool.Config().ConnConfig.TLSConfig
	require.NotNil(t, tlsCfg)
	assert.True(t, tlsCfg.InsecureSkipVerify)
}

func integrationPostgres(t *testing.T, maxConns int32) *Postgres {
	t.Helper()
	url := os.Getenv("KONBASE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KONBASE_TEST_DATABASE_URL not set")
	}
	p, err := NewPostgres(PostgresConfig{URL: url, MaxConns: maxConns, AcquireTimeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestPostgresExecuteQuery(t *testing.T) {
	p := integrationPostgres(t, 4)
	ctx := context.Background()

	rows, err := p.ExecuteQuery(ctx, "SELECT $1::int AS n, 'x' AS s", 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 7, rows[0]["n"])
	assert.Equal(t, "x", rows[0]["s"])

	row, err := p.ExecuteQuerySingle(ctx, "SELECT 1 WHERE false")
	require.NoError(t, err)
	assert.Nil(t, row)

	assert.True(t, p.TestConnection(ctx).Healthy())
}

func TestPostgresExecuteQuery_ReleasesOnError(t *testing.T) {
	const maxConns = 3
	p := integrationPostgres(t, maxConns)
	ctx := context.Background()

	for i := 0; i < maxConns+1; i++ {
		_, err := p.ExecuteQuery(ctx, "SELEC broken")
		require.Error(t, err)
	}
	rows, err := p.ExecuteQuery(ctx, "SELECT 1 AS ok")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var wg sync.WaitGroup
	errs := make(chan error, maxConns+1)
	for i := 0; i < maxConns+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.ExecuteQuery(ctx, "SELECT pg_sleep(0.05)")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Zero(t, p.Stat().AcquiredConns())
}
