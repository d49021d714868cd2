package handler // handler defines the HTTP handlers of the setup and admin API

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/konbase/internal/middleware"
	"github.com/iliyamo/konbase/internal/repository"
)

// userID returns the authenticated user id stored by JWTAuth.
func userID(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserID).(string)
	return id, ok && id != ""
}

// errorJSON maps data-layer errors onto HTTP statuses.  Anything not
// recognised is a 500 with a generic message.
func errorJSON(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrInvalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrUnsupported):
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
