package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	apphttp "github.com/jhoicas/punchlist-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/punchlist-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "punchlist-test"
	testExpMin    = 60
)

// stubResolver devuelve actores fijos por id; err fuerza un fallo de infraestructura.
type stubResolver struct {
	actors map[int64]*access.Actor
	errs   map[int64]error
}

func (s stubResolver) Resolve(_ context.Context, id int64) (*access.Actor, error) {
	if err, ok := s.errs[id]; ok {
		return nil, err
	}
	if a, ok := s.actors[id]; ok {
		return a, nil
	}
	return nil, domain.ErrUserNotFound
}

func newResolver() stubResolver {
	return stubResolver{
		actors: map[int64]*access.Actor{
			1: {UserID: 1, Role: entity.RoleAdmin, Permissions: map[string]bool{entity.PermManageUsers: true}},
			// El token dice admin pero el store dice viewer: gana el store.
			2: {UserID: 2, Role: entity.RoleViewer, Permissions: map[string]bool{entity.PermViewTasks: true}},
		},
		errs: map[int64]error{
			3: domain.ErrSuspended,
			4: errors.New("override store down"),
		},
	}
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y resolver el actor
//   - RequirePermission para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(keys ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret, newResolver(), nil),
		apphttp.RequirePermission(keys...),
		func(c *fiber.Ctx) error {
			actor := apphttp.GetActor(c)
			return c.JSON(fiber.Map{"ok": true, "user_id": actor.UserID, "role": actor.Role})
		},
	)
	return app
}

// tokenFor genera un JWT para el usuario con el rol indicado.
func tokenFor(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, nil, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_ConPermisoPasa(t *testing.T) {
	app := buildTestApp(entity.PermManageUsers)
	resp := doRequest(t, app, tokenFor(t, 1, entity.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(1), body["user_id"])
}

func TestRequirePermission_CualquieraDeLasClaves(t *testing.T) {
	app := buildTestApp(entity.PermManageTasks, entity.PermViewTasks)
	resp := doRequest(t, app, tokenFor(t, 2, entity.RoleViewer))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequirePermission_RolDelTokenNoAutoriza(t *testing.T) {
	app := buildTestApp(entity.PermManageUsers)
	resp := doRequest(t, app, tokenFor(t, 2, entity.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"los permisos salen del store, no del claim role")
	assert.Contains(t, bodyString(t, resp), "FORBIDDEN")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_Rechazos(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, 1, entity.RoleAdmin, nil, testIssuer, -1)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secret-completamente-distinto", 1, entity.RoleAdmin, nil, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"formato", "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"otro secret", "Bearer " + otherSecret, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"usuario inexistente", tokenFor(t, 99, entity.RoleAdmin), http.StatusUnauthorized, "UNKNOWN_USER"},
		{"suspendido", tokenFor(t, 3, entity.RoleAdmin), http.StatusForbidden, "SUSPENDED"},
		{"store de permisos caído", tokenFor(t, 4, entity.RoleAdmin), http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE"},
	}
	app := buildTestApp(entity.PermManageUsers)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, tc.header)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, bodyString(t, resp), tc.code)
		})
	}
}

func TestJWT_ExpiraSegunMinutos(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, 1, entity.RoleAdmin, nil, testIssuer, testExpMin)
	require.NoError(t, err)
	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(testExpMin*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}
