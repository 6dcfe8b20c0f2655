package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	apphttp "github.com/jhoicas/vivero-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/vivero-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "vivero-api-test"
	testExpMin    = 60
)

// catalogApp monta una escritura de catálogo con los mismos roles que el router real.
func catalogApp() *fiber.App {
	app := fiber.New()
	app.Post("/items",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole("admin", "encargado"),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"usuario": apphttp.GetUserID(c),
				"tenant":  apphttp.GetTenantID(c),
				"rol":     apphttp.GetRole(c),
			})
		},
	)
	return app
}

func postItems(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func signed(t *testing.T, secret string, id pkgjwt.Identity, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, id, testIssuer, expMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_EscrituraDeCatalogo(t *testing.T) {
	app := catalogApp()
	cases := []struct {
		rol    string
		status int
		code   string
	}{
		{"admin", fiber.StatusOK, ""},
		{"encargado", fiber.StatusOK, ""},
		{"operario", fiber.StatusForbidden, "FORBIDDEN"},
		{"", fiber.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run("rol="+tc.rol, func(t *testing.T) {
			auth := signed(t, testJWTSecret, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: tc.rol}, testExpMin)
			resp := postItems(t, app, auth)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.code != "" {
				var body dto.ErrorResponse
				require.NoError(t, decodeJSON(resp, &body))
				assert.Equal(t, tc.code, body.Code)
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokensRechazados(t *testing.T) {
	app := catalogApp()
	valid := pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: "admin"}

	cases := map[string]struct {
		header string
		code   string
	}{
		"sin cabecera":  {"", "MISSING_TOKEN"},
		"esquema basic": {"Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		"basura":        {"Bearer no.es.jwt", "INVALID_TOKEN"},
		"otra firma":    {signed(t, "otro-secreto", valid, testExpMin), "INVALID_TOKEN"},
		"expirado":      {signed(t, testJWTSecret, valid, -5), "INVALID_TOKEN"},
		"sin tenant":    {signed(t, testJWTSecret, pkgjwt.Identity{UserID: testUserID, Role: "admin"}, testExpMin), "INVALID_TOKEN"},
		"sin usuario":   {signed(t, testJWTSecret, pkgjwt.Identity{TenantID: testTenantID, Role: "admin"}, testExpMin), "INVALID_TOKEN"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postItems(t, app, tc.header)
			defer resp.Body.Close()
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, decodeJSON(resp, &body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestAuthMiddleware_IdentidadDisponibleEnHandler(t *testing.T) {
	auth := signed(t, testJWTSecret, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: "encargado"}, testExpMin)
	resp := postItems(t, catalogApp(), auth)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, decodeJSON(resp, &got))
	assert.Equal(t, map[string]string{
		"usuario": testUserID,
		"tenant":  testTenantID,
		"rol":     "encargado",
	}, got)
}
