package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/konbase/internal/handler"
	"github.com/iliyamo/konbase/internal/middleware"
	"github.com/iliyamo/konbase/internal/model"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Health   *handler.HealthHandler
	Setup    *handler.SetupHandler
	Auth     *handler.AuthHandler
	Settings *handler.SettingsHandler
	Audit    *handler.AuditHandler
}

// RegisterRoutes registers routes that do not require authentication: the
// health probe, sign-in and the setup wizard.
//
// The setup endpoints are open so a fresh install can migrate before any
// admin account exists.  Deployments are expected to close /v1/setup at
// the proxy once setup is done.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", h.Health.Health)
	e.POST("/v1/auth/login", h.Auth.Login)

	setup := e.Group("/v1/setup")
	setup.GET("/detect", h.Setup.Detect)
	setup.GET("/migrations", h.Setup.MigrationStatus)
	setup.POST("/migrations", h.Setup.RunMigrations)
}

// RegisterProtected registers routes behind JWTAuth.  Settings need a
// global role of system_admin or above; association audit logs check
// membership per request.
func RegisterProtected(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", h.Auth.Me)
	auth.GET("/associations/:id/audit-logs", h.Audit.ListAssociationLogs)

	admin := auth.Group("/admin", middleware.RequireRole(model.RoleSystemAdmin))
	admin.GET("/settings", h.Settings.List)
	admin.GET("/settings/:key", h.Settings.Get)
	admin.PUT("/settings/:key", h.Settings.Put)
}
