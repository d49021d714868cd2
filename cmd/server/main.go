package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/config"
	"github.com/iliyamo/konbase/internal/handler"
	"github.com/iliyamo/konbase/internal/logger"
	"github.com/iliyamo/konbase/internal/migrations"
	"github.com/iliyamo/konbase/internal/queue"
	"github.com/iliyamo/konbase/internal/repository"
	"github.com/iliyamo/konbase/internal/router"
	"github.com/iliyamo/konbase/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, ServiceName: "konbase", Pretty: !cfg.Production()})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dal, err := repository.GetDataAccess(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("data access")
	}
	defer func() { _ = repository.ResetDataAccess() }()

	// Only the relational backend has a schema to migrate.
	var migrator handler.Migrator
	if pg, ok := dal.(*repository.PostgresRepo); ok {
		r, err := migrations.NewPostgresRunner(pg.DB(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("load migrations")
		}
		migrator = r
		logMigrationStatus(ctx, r, log)
	}

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.AMQPURL, dal, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	h := router.Handlers{
		Health:   handler.NewHealthHandler(dal),
		Setup:    handler.NewSetupHandler(cfg, migrator, log),
		Auth:     handler.NewAuthHandler(cfg, dal),
		Settings: handler.NewSettingsHandler(dal, service.NewAuditRecorder(cfg.AMQPURL, dal, log), log),
		Audit:    handler.NewAuditHandler(dal),
	}
	router.RegisterRoutes(e, h)
	router.RegisterProtected(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("backend", string(dal.Backend())).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if stat := poolStat(dal); stat != nil {
		log.Info().Int32("acquired", stat.AcquiredConns()).Int32("total", stat.TotalConns()).Msg("pool at shutdown")
	}
}

func logMigrationStatus(ctx context.Context, r *migrations.Runner, log zerolog.Logger) {
	st, err := r.Status(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("migration status unavailable")
		return
	}
	if !st.IsUpToDate {
		log.Warn().Strs("pending", st.Pending).Msg("schema has pending migrations; run konbase migrate up")
	}
}

func poolStat(dal repository.DataAccess) *pgxpool.Stat {
	pg, ok := dal.(*repository.PostgresRepo)
	if !ok {
		return nil
	}
	return pg.DB().Stat()
}
