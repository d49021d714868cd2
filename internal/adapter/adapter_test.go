package adapter_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/konbase/internal/adapter"
	"github.com/iliyamo/konbase/internal/config"
	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/repository"
	"github.com/iliyamo/konbase/internal/testutil"
)

func seed(t *testing.T, dal repository.DataAccess) {
	t.Helper()
	for k, v := range map[string]string{
		"site.name": "KonBase",
		"site.logo": "/logo.png",
		"mail.host": "smtp.local",
		"a*b":       "star",
	} {
		_, err := dal.SetSystemSetting(context.Background(), k, v)
		require.NoError(t, err)
	}
}

func checkLookups(t *testing.T, a adapter.Adapter) {
	ctx := context.Background()

	v, ok, err := a.Get(ctx, "site.name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "KonBase", v)

	_, ok, err = a.Get(ctx, "site.missing")
	require.NoError(t, err)
	assert.False(t, ok)

	site, err := a.GetByPrefix(ctx, "site.")
	require.NoError(t, err)
	assert.Equal(t, []adapter.Entry{
		{Key: "site.logo", Value: "/logo.png"},
		{Key: "site.name", Value: "KonBase"},
	}, site)

	star, err := a.GetByPrefix(ctx, "a*")
	require.NoError(t, err)
	assert.Equal(t, []adapter.Entry{{Key: "a*b", Value: "star"}}, star)

	none, err := a.GetByPrefix(ctx, "nothing.")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := a.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "a*b", all[0].Key)

	assert.True(t, a.IsAvailable(ctx))
	assert.True(t, a.HealthCheck(ctx).Healthy())
}

func TestKeyValueAdapter(t *testing.T) {
	kv, _ := testutil.Redis(t)
	seed(t, repository.NewRedisRepo(kv, zerolog.Nop()))

	a := adapter.FromRedis(kv)
	assert.Equal(t, repository.BackendRedis, a.Backend())
	checkLookups(t, a)
}

func TestRelationalAdapter(t *testing.T) {
	dal := repository.NewPostgresRepo(testutil.MigratedPostgres(t), zerolog.Nop())
	seed(t, dal)

	a := adapter.FromDataAccess(dal)
	assert.Equal(t, repository.BackendPostgres, a.Backend())
	checkLookups(t, a)
}

func TestIsAvailable_NeverFails(t *testing.T) {
	kv, mr := testutil.Redis(t)
	a := adapter.FromRedis(kv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, a.IsAvailable(ctx))

	mr.Close()
	assert.False(t, a.IsAvailable(context.Background()))
	h := a.HealthCheck(context.Background())
	assert.Equal(t, database.StatusUnhealthy, h.Status)

	db, err := database.NewPostgres(database.PostgresConfig{URL: "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"})
	require.NoError(t, err)
	pa := adapter.FromDataAccess(repository.NewPostgresRepo(db, zerolog.Nop()))
	defer pa.Close()
	assert.False(t, pa.IsAvailable(context.Background()))
}

func TestGet_CachesUntilCleanup(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{RedisURL: "redis://" + mr.Addr()}
	t.Cleanup(func() { _ = adapter.Cleanup() })

	first, err := adapter.Get(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	second, err := adapter.Get(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, adapter.Cleanup())
	require.NoError(t, adapter.Cleanup(), "cleanup twice is harmless")

	third, err := adapter.Get(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.True(t, third.IsAvailable(context.Background()))
}

func TestNew_SelectsRelationalWithoutRedis(t *testing.T) {
	a, err := adapter.New(context.Background(), config.Config{PostgresURL: "postgres://nobody@127.0.0.1:1/none"}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, repository.BackendPostgres, a.Backend())

	_, err = adapter.New(context.Background(), config.Config{}, zerolog.Nop())
	require.ErrorIs(t, err, database.ErrMissingPostgresURL)
}
