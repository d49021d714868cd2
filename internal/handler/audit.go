package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/konbase/internal/access"
	"github.com/iliyamo/konbase/internal/model"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditStore is the slice of DataAccess the audit log view needs.
type AuditStore interface {
	access.MemberLookup
	GetAuditLogsByAssociationID(ctx context.Context, associationID string, limit int) ([]model.AuditLog, error)
}

type AuditHandler struct {
	Store AuditStore
}

func NewAuditHandler(s AuditStore) *AuditHandler { return &AuditHandler{Store: s} }

// ListAssociationLogs returns the newest entries of one association.  The
// caller must be a manager or above in that association; ?limit= caps the
// result (default 50, at most 500).
func (h *AuditHandler) ListAssociationLogs(c echo.Context) error {
	uid, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := defaultAuditLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		limit = min(n, maxAuditLimit)
	}
	associationID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := access.RequireRole(ctx, h.Store, uid, associationID, model.RoleManager); err != nil {
		return errorJSON(c, err, "membership check failed")
	}
	logs, err := h.Store.GetAuditLogsByAssociationID(ctx, associationID, limit)
	if err != nil {
		return errorJSON(c, err, "list audit logs failed")
	}
	return c.JSON(http.StatusOK, logs)
}
