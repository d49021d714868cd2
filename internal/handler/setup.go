package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/config"
	"github.com/iliyamo/konbase/internal/migrations"
	"github.com/iliyamo/konbase/internal/repository"
)

// Migrator is the part of migrations.Runner the setup wizard uses.
type Migrator interface {
	Run(ctx context.Context) (migrations.Result, error)
	Status(ctx context.Context) (migrations.Status, error)
}

// SetupHandler serves the setup wizard.  Migrator is nil when the selected
// backend is the key-value store, which has no schema.
type SetupHandler struct {
	Cfg      config.Config
	Migrator Migrator
	Log      zerolog.Logger
}

func NewSetupHandler(cfg config.Config, m Migrator, log zerolog.Logger) *SetupHandler {
	return &SetupHandler{Cfg: cfg, Migrator: m, Log: log}
}

type detectResp struct {
	Backend     repository.Backend `json:"backend"`
	PostgresSet bool               `json:"postgres_configured"`
	RedisSet    bool               `json:"redis_configured"`
	Production  bool               `json:"production"`
}

// Detect reports which backend the environment selects.  Connection
// strings are never echoed back.
func (h *SetupHandler) Detect(c echo.Context) error {
	return c.JSON(http.StatusOK, detectResp{
		Backend:     repository.DetectBackend(h.Cfg),
		PostgresSet: h.Cfg.PostgresURL != "",
		RedisSet:    h.Cfg.RedisURL != "",
		Production:  h.Cfg.Production(),
	})
}

func (h *SetupHandler) MigrationStatus(c echo.Context) error {
	if h.Migrator == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "migrations apply to the postgresql backend only"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	st, err := h.Migrator.Status(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("migration status")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "migration status failed"})
	}
	return c.JSON(http.StatusOK, st)
}

// RunMigrations applies pending migrations.  On failure the response names
// the failing version; versions applied before it stay applied.
func (h *SetupHandler) RunMigrations(c echo.Context) error {
	if h.Migrator == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "migrations apply to the postgresql backend only"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	res, err := h.Migrator.Run(ctx)
	if err != nil {
		var me *migrations.MigrationError
		if errors.As(err, &me) {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":   me.Error(),
				"version": me.Version,
				"applied": res.Applied,
			})
		}
		h.Log.Error().Err(err).Msg("run migrations")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "run migrations failed"})
	}
	return c.JSON(http.StatusOK, res)
}
