package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodcourt/internal/logging"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newGuardedEcho(roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("/p", AuthJWT(testSecret), RoleGuard(roles...))
	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"user_id": c.Get(CtxUserIDKey),
			"role":    c.Get(CtxUserRoleKey),
		})
	})
	return e
}

func doGet(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_AcceptsValidToken(t *testing.T) {
	e := newGuardedEcho(RoleKasir)
	tok := signToken(t, jwt.MapClaims{
		"sub":  "12",
		"role": "kasir",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	rec := doGet(e, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":12,"role":"KASIR"}`, rec.Body.String())
}

func TestAuthJWT_Rejects(t *testing.T) {
	e := newGuardedEcho(RoleKasir)
	expired := signToken(t, jwt.MapClaims{"sub": 1, "role": "KASIR", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)
	wrongKey := signToken(t, jwt.MapClaims{"sub": 1, "role": "KASIR"}, "other")
	noRole := signToken(t, jwt.MapClaims{"sub": 1}, testSecret)

	for name, authz := range map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"expired":    "Bearer " + expired,
		"wrong key":  "Bearer " + wrongKey,
		"no role":    "Bearer " + noRole,
	} {
		t.Run(name, func(t *testing.T) {
			rec := doGet(e, authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRoleGuard(t *testing.T) {
	e := newGuardedEcho(RoleKitchen)

	kasir := signToken(t, jwt.MapClaims{"sub": 3, "role": RoleKasir}, testSecret)
	assert.Equal(t, http.StatusForbidden, doGet(e, "Bearer "+kasir).Code)

	kitchen := signToken(t, jwt.MapClaims{"sub": 3, "role": RoleKitchen}, testSecret)
	assert.Equal(t, http.StatusOK, doGet(e, "Bearer "+kitchen).Code)

	admin := signToken(t, jwt.MapClaims{"sub": 1, "role": RoleAdmin}, testSecret)
	assert.Equal(t, http.StatusOK, doGet(e, "Bearer "+admin).Code)
}

func TestRequestLogger_PutsLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info")

	e := echo.New()
	e.Use(RequestLogger(base))
	e.GET("/ping", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside handler")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))
	out := buf.String()
	assert.Contains(t, out, `"msg":"inside handler"`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
	assert.Contains(t, out, `"msg":"request completed"`)
}
