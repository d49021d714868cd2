package config // package config loads application configuration from environment variables

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Nothing here is validated eagerly: a missing
// connection string only fails when the component that needs it is built,
// so that tooling which never touches a backend can still start.
type Config struct {
	Env              string        // APP_ENV or NODE_ENV ("production" relaxes Postgres TLS verification)
	Port             string        // HTTP port to listen on
	PostgresURL      string        // POSTGRES_URL, falling back to DATABASE_URL
	RedisURL         string        // REDIS_URL; when set the key-value backend is selected
	DBMaxConns       int32         // pool upper bound
	DBIdleTimeout    time.Duration // idle connections are closed after this long
	DBAcquireTimeout time.Duration // maximum wait for a pooled connection
	JWTSecret        string        // secret used to sign and verify admin API tokens
	AccessTTLMin     int           // access token lifetime in minutes
	BcryptCost       int           // bcrypt cost for bootstrap-admin
	AMQPURL          string        // RABBITMQ_URL or AMQP_URL; empty disables audit publishing
	LogLevel         string        // zerolog level name
}

// Load reads configuration values from the environment.  A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment take precedence over it.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:              firstEnv("development", "APP_ENV", "NODE_ENV"),
		Port:             envStr("APP_PORT", "8080"),
		PostgresURL:      firstEnv("", "POSTGRES_URL", "DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		DBMaxConns:       int32(envInt("DB_MAX_CONNS", 20)),
		DBIdleTimeout:    envDur("DB_IDLE_TIMEOUT", 30*time.Second),
		DBAcquireTimeout: envDur("DB_ACQUIRE_TIMEOUT", 2*time.Second),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AccessTTLMin:     envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:       envInt("BCRYPT_COST", 10),
		AMQPURL:          firstEnv("", "RABBITMQ_URL", "AMQP_URL"),
		LogLevel:         envStr("LOG_LEVEL", "info"),
	}
}

// Production reports whether the application runs in production mode.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// UseRedis reports whether factories that auto-detect the backend should
// pick the key-value store.
func (c Config) UseRedis() bool { return c.RedisURL != "" }
