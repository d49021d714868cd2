package database

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iliyamo/konbase/internal/config"
)

// ErrMissingPostgresURL is returned when a relational provider is built
// without a connection string.
var ErrMissingPostgresURL = errors.New("POSTGRES_URL or DATABASE_URL is not set")

// PostgresConfig controls pool construction.
type PostgresConfig struct {
	URL            string
	MaxConns       int32
	IdleTimeout    time.Duration
	AcquireTimeout time.Duration
	// Production keeps TLS on but skips certificate verification, which is
	// what hosted Postgres offerings with self-signed chains need.
	Production bool
}

// PostgresConfigFrom extracts the pool settings from the application config.
func PostgresConfigFrom(cfg config.Config) PostgresConfig {
	return PostgresConfig{
		URL:            cfg.PostgresURL,
		MaxConns:       cfg.DBMaxConns,
		IdleTimeout:    cfg.DBIdleTimeout,
		AcquireTimeout: cfg.DBAcquireTimeout,
		Production:     cfg.Production(),
	}
}

// Postgres owns the process-wide connection pool.  The pool itself is
// created on first use; every query acquires a connection and releases it
// before returning, on success and on error alike.
type Postgres struct {
	cfg PostgresConfig

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPostgres validates cfg and returns a provider.  No connection is made.
func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	if cfg.URL == "" {
		return nil, ErrMissingPostgresURL
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 20
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 2 * time.Second
	}
	return &Postgres{cfg: cfg}, nil
}

// MaxConns returns the configured pool size.
func (p *Postgres) MaxConns() int32 { return p.cfg.MaxConns }

// Pool returns the pool, building it on the first call.
func (p *Postgres) Pool() (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		return p.pool, nil
	}
	pc, err := pgxpool.ParseConfig(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	pc.MaxConns = p.cfg.MaxConns
	pc.MaxConnIdleTime = p.cfg.IdleTimeout
	pc.ConnConfig.ConnectTimeout = p.cfg.AcquireTimeout
	if p.cfg.Production {
		relaxTLS(pc)
	}
	pc.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		// timestamptz values come back in UTC regardless of the server zone.
		conn.TypeMap().RegisterType(&pgtype.Type{
			Name:  "timestamptz",
			OID:   pgtype.TimestamptzOID,
			Codec: &pgtype.TimestamptzCodec{ScanLocation: time.UTC},
		})
		return nil
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), pc)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	p.pool = pool
	return pool, nil
}

func relaxTLS(pc *pgxpool.Config) {
	cc := pc.ConnConfig
	if cc.TLSConfig == nil {
		cc.TLSConfig = &tls.Config{ServerName: cc.Host}
	}
	cc.TLSConfig.InsecureSkipVerify = true
	for _, fb := range cc.Fallbacks {
		if fb.TLSConfig != nil {
			fb.TLSConfig.InsecureSkipVerify = true
		}
	}
}

// Acquire checks a connection out of the pool, waiting at most the
// configured acquire timeout.  Callers must Release it.
func (p *Postgres) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	pool, err := p.Pool()
	if err != nil {
		return nil, err
	}
	actx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()
	conn, err := pool.Acquire(actx)
	if err != nil {
		return nil, fmt.Errorf("acquire postgres connection: %w", err)
	}
	return conn, nil
}

// WithConn runs fn on an acquired connection and always releases it.
func (p *Postgres) WithConn(ctx context.Context, fn func(*pgxpool.Conn) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(conn)
}

// WithTx runs fn inside a transaction on an acquired connection.  The
// transaction is committed when fn returns nil and rolled back otherwise.
func (p *Postgres) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return p.WithConn(ctx, func(conn *pgxpool.Conn) error {
		return pgx.BeginFunc(ctx, conn, fn)
	})
}

// ExecuteQuery runs a parameterized statement and returns every row as a
// column-name keyed map.
func (p *Postgres) ExecuteQuery(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	var out []map[string]any
	err := p.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToMap)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}

// ExecuteQuerySingle is ExecuteQuery returning only the first row, or nil.
func (p *Postgres) ExecuteQuerySingle(ctx context.Context, sql string, args ...any) (map[string]any, error) {
	rows, err := p.ExecuteQuery(ctx, sql, args...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Exec runs a statement that returns no rows and reports the affected count.
func (p *Postgres) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	var n int64
	err := p.WithConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, sql, args...)
		n = tag.RowsAffected()
		return err
	})
	return n, err
}

// TestConnection issues SELECT 1 and reports latency.  It never returns an
// error; failures are described in the result.
func (p *Postgres) TestConnection(ctx context.Context) Health {
	return probe(func() error {
		_, err := p.ExecuteQuery(ctx, "SELECT 1")
		return err
	})
}

// Stat returns pool statistics, or nil when the pool was never built.
func (p *Postgres) Stat() *pgxpool.Stat {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil
	}
	return p.pool.Stat()
}

// Close drains the pool.  A later query builds a fresh one.
func (p *Postgres) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

// Query runs sql and scans every row into T by column name.  T may have
// fields the statement does not return.
func Query[T any](ctx context.Context, p *Postgres, sql string, args ...any) ([]T, error) {
	var out []T
	err := p.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// QueryOne is Query for a single row.  No rows yields (nil, nil).
func QueryOne[T any](ctx context.Context, p *Postgres, sql string, args ...any) (*T, error) {
	var out *T
	err := p.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		v, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		out = &v
		return nil
	})
	return out, err
}
