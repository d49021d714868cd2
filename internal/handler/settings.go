package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/model"
	"github.com/iliyamo/konbase/internal/queue"
)

// SettingsStore is the slice of DataAccess the admin settings panel uses.
type SettingsStore interface {
	SetSystemSetting(ctx context.Context, key, value string) (*model.SystemSetting, error)
	GetSystemSetting(ctx context.Context, key string) (*model.SystemSetting, error)
	ListSystemSettings(ctx context.Context, prefix string) ([]model.SystemSetting, error)
}

// AuditRecorder records an administrative action.
type AuditRecorder interface {
	Record(ctx context.Context, event queue.AuditEvent) error
}

type SettingsHandler struct {
	Store SettingsStore
	Audit AuditRecorder
	Log   zerolog.Logger
}

func NewSettingsHandler(s SettingsStore, a AuditRecorder, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{Store: s, Audit: a, Log: log}
}

type putSettingReq struct {
	Value string `json:"value"`
}

// List returns every setting, or those under ?prefix=.
func (h *SettingsHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	settings, err := h.Store.ListSystemSettings(ctx, c.QueryParam("prefix"))
	if err != nil {
		return errorJSON(c, err, "list settings failed")
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Store.GetSystemSetting(ctx, c.Param("key"))
	if err != nil {
		return errorJSON(c, err, "get setting failed")
	}
	if s == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "setting not found"})
	}
	return c.JSON(http.StatusOK, s)
}

// Put upserts a setting and records who changed it.  A failure to record
// the audit event does not undo the write.
func (h *SettingsHandler) Put(c echo.Context) error {
	var req putSettingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	key := c.Param("key")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Store.SetSystemSetting(ctx, key, req.Value)
	if err != nil {
		return errorJSON(c, err, "save setting failed")
	}

	ev := queue.AuditEvent{
		Action:     "settings.update",
		EntityType: "system_setting",
		EntityID:   &key,
		Details:    map[string]any{"value": req.Value},
	}
	if uid, ok := userID(c); ok {
		ev.ProfileID = &uid
	}
	if err := h.Audit.Record(ctx, ev); err != nil {
		h.Log.Warn().Err(err).Str("key", key).Msg("audit settings.update")
	}
	return c.JSON(http.StatusOK, s)
}
