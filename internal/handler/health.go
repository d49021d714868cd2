package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/repository"
)

// HealthChecker is satisfied by every DataAccess.
type HealthChecker interface {
	Backend() repository.Backend
	HealthCheck(ctx context.Context) database.Health
}

type HealthHandler struct {
	DB HealthChecker
}

func NewHealthHandler(db HealthChecker) *HealthHandler { return &HealthHandler{DB: db} }

type healthResp struct {
	Backend repository.Backend `json:"backend"`
	database.Health
}

// Health probes the data backend.  200 when healthy, 503 otherwise; the
// body is the same health descriptor in both cases.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	res := h.DB.HealthCheck(ctx)
	status := http.StatusOK
	if !res.Healthy() {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, healthResp{Backend: h.DB.Backend(), Health: res})
}
