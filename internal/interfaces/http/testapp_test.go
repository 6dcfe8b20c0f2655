package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/application/notification"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/infrastructure/memory"
	"github.com/jhoicas/vivero-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/vivero-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/vivero-api/pkg/jwt"
)

const (
	otherTenantID = "00000000-0000-0000-0000-0000000000t2"
	otherUserID   = "00000000-0000-0000-0000-0000000000u2"
	testTaskID    = "00000000-0000-0000-0000-0000000000a1"
	cronSecret    = "cron-secret"
)

// apiFixture app completa sobre el store en memoria.
type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	store.AddTenant(entity.Tenant{IDTenant: testTenantID, Nombre: "Vivero Uno", Activo: true})
	store.AddTenant(entity.Tenant{IDTenant: otherTenantID, Nombre: "Vivero Dos", Activo: true})
	store.AddUser(entity.User{IDUsuario: testUserID, IDTenant: testTenantID, Nombre: "Ana", Activo: true})
	store.AddUser(entity.User{IDUsuario: otherUserID, IDTenant: otherTenantID, Nombre: "Luis", Activo: true})
	store.AddTask(entity.Task{IDTarea: testTaskID, IDTenant: testTenantID, Titulo: "Fumigación", FechaProgramada: time.Now().AddDate(0, 0, 7)})

	tx := memory.NewTxRunner(store)
	items := memory.NewItemRepository(store)
	movs := memory.NewMovementRepository(store)
	dir := memory.NewDirectoryRepository(store)
	notifs := memory.NewNotificationRepository(store)
	prefs := memory.NewPreferenceRepository(store)
	policy := inventory.Policy{WeightedCost: true}
	log := zerolog.Nop()

	gate := notification.NewDedupGate(tx, 24*time.Hour)
	deps := apphttp.RouterDeps{
		Items:         inventory.NewItemUseCase(tx, items, policy),
		Movements:     inventory.NewRegisterMovementUseCase(tx, movs, dir, policy, log),
		Consumption:   inventory.NewConsumptionUseCase(tx, items, movs, dir, pdf.NewMarotoPDFGenerator("test"), policy, log),
		Replenishment: inventory.NewReplenishmentUseCase(items),
		Notifications: notification.NewStoreUseCase(notifs, prefs, dir),
		Generator: notification.NewGeneratorUseCase(notification.GeneratorDeps{
			Tenants: dir, Users: dir, Items: items, Tasks: dir, Plants: dir, Prefs: prefs,
		}, gate, notification.GeneratorConfig{Workers: 2, TenantTimeout: 5 * time.Second}, log),
		JWTSecret:  testJWTSecret,
		CronSecret: cronSecret,
	}

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, deps)
	return &apiFixture{app: app, store: store}
}

func bearer(t *testing.T, tenantID, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: userID, TenantID: tenantID, Role: role}, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// call ejecuta la request y decodifica el body JSON en out (si out != nil).
func (f *apiFixture) call(t *testing.T, method, path, auth string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *apiFixture) admin(t *testing.T) string {
	return bearer(t, testTenantID, testUserID, "admin")
}

func decodeJSON(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}
