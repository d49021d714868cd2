package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/konbase/internal/model"
	"github.com/iliyamo/konbase/internal/utils"
)

func serve(t *testing.T, header string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user": c.Get(CtxUserID), "role": c.Get(CtxRole)})
	}, mws...)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", "u1", "admin", 5)
	require.NoError(t, err)

	rec := serve(t, "Bearer "+tok.Token, JWTAuth("secret"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"u1","role":"admin"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(t, "", JWTAuth("secret")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, "Bearer nope", JWTAuth("secret")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, "Bearer "+tok.Token, JWTAuth("other")).Code)
}

func TestRequireRole(t *testing.T) {
	for _, tt := range []struct {
		role string
		want int
	}{
		{"super_admin", http.StatusOK},
		{"system_admin", http.StatusOK},
		{"admin", http.StatusForbidden},
		{"made_up", http.StatusForbidden},
	} {
		tok, err := utils.NewAccessToken("secret", "u1", tt.role, 5)
		require.NoError(t, err)
		rec := serve(t, "Bearer "+tok.Token, JWTAuth("secret"), RequireRole(model.RoleSystemAdmin))
		assert.Equal(t, tt.want, rec.Code, tt.role)
	}
}
