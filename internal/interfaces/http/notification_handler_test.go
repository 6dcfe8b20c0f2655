package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

func (f *apiFixture) runCron(t *testing.T) (int, dto.RunChecksResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/internal/cron/notificaciones", nil)
	req.Header.Set("X-Cron-Secret", cronSecret)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out dto.RunChecksResponse
	require.NoError(t, decodeJSON(resp, &out))
	return resp.StatusCode, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Cron + notificaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCron_GeneraYDeduplica(t *testing.T) {
	f := newAPIFixture(t)
	f.createItem(t, "Sustrato", "3", "5")

	code, out := f.runCron(t)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 0, out.Fallidos)

	var list dto.NotificationListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/notificaciones", f.admin(t), nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "stock_bajo", list.Items[0].Tipo)
	assert.Equal(t, "/inventario", list.Items[0].URLAccion)
	assert.Contains(t, list.Items[0].Mensaje, "Sustrato")
	assert.Equal(t, 1, list.NoLeidas)

	// Segunda corrida dentro de la ventana: suprimida.
	_, out = f.runCron(t)
	var unread dto.UnreadCountResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/notificaciones/no-leidas", f.admin(t), nil, &unread))
	assert.Equal(t, 1, unread.NoLeidas)
	for _, tr := range out.Tenants {
		if tr.IDTenant == testTenantID {
			assert.Equal(t, 1, tr.Suprimidas["stock_bajo"])
		}
	}
}

func TestCron_SecretInvalido(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/internal/cron/notificaciones", nil)
	req.Header.Set("X-Cron-Secret", "otro")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotificaciones_MarcarLeidaYPropiedad(t *testing.T) {
	f := newAPIFixture(t)
	var created dto.NotificationResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/notificaciones", f.admin(t), dto.CreateNotificationRequest{
		Tipo: "tarea_proxima", Titulo: "Riego mañana", Mensaje: "Invernadero 1",
	}, &created))
	assert.Equal(t, testUserID, created.IDUsuario)
	assert.False(t, created.Leida)

	other := bearer(t, otherTenantID, otherUserID, "admin")
	path := "/api/notificaciones/" + created.IDNotificacion
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPatch, path+"/leida", other, nil, nil))
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodDelete, path, other, nil, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodPatch, "/api/notificaciones/no-existe/leida", f.admin(t), nil, nil))

	require.Equal(t, http.StatusNoContent, f.call(t, http.MethodPatch, path+"/leida", f.admin(t), nil, nil))
	require.Equal(t, http.StatusNoContent, f.call(t, http.MethodPatch, path+"/leida", f.admin(t), nil, nil), "marcar dos veces no es error")

	var unread dto.UnreadCountResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/notificaciones/no-leidas", f.admin(t), nil, &unread))
	assert.Equal(t, 0, unread.NoLeidas)

	require.Equal(t, http.StatusNoContent, f.call(t, http.MethodDelete, path, f.admin(t), nil, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodDelete, path, f.admin(t), nil, nil))
}

func TestNotificaciones_DestinatarioDebeSerUsuarioActivoDelTenant(t *testing.T) {
	f := newAPIFixture(t)
	const inactivo = "00000000-0000-0000-0000-0000000000u3"
	f.store.AddUser(entity.User{IDUsuario: inactivo, IDTenant: testTenantID, Nombre: "Eva", Activo: false})

	for name, destinatario := range map[string]string{
		"de otro tenant": otherUserID,
		"inactivo":       inactivo,
		"inexistente":    "00000000-0000-0000-0000-0000000000ff",
	} {
		t.Run(name, func(t *testing.T) {
			code := f.call(t, http.MethodPost, "/api/notificaciones", f.admin(t), dto.CreateNotificationRequest{
				Tipo: "tarea_vencida", Titulo: "Poda", IDUsuario: destinatario,
			}, nil)
			assert.Equal(t, http.StatusNotFound, code)
		})
	}

	var unread dto.UnreadCountResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/notificaciones/no-leidas",
		bearer(t, otherTenantID, otherUserID, "admin"), nil, &unread))
	assert.Equal(t, 0, unread.NoLeidas)
}

func TestNotificaciones_MarcarTodas(t *testing.T) {
	f := newAPIFixture(t)
	for _, tipo := range []string{"stock_bajo", "tarea_vencida"} {
		require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/notificaciones", f.admin(t),
			dto.CreateNotificationRequest{Tipo: tipo, Titulo: tipo}, nil))
	}
	var out map[string]int
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPatch, "/api/notificaciones/leidas", f.admin(t), nil, &out))
	assert.Equal(t, 2, out["actualizadas"])
}

func TestNotificaciones_TipoInvalido(t *testing.T) {
	f := newAPIFixture(t)
	code := f.call(t, http.MethodPost, "/api/notificaciones", f.admin(t), dto.CreateNotificationRequest{Tipo: "otro", Titulo: "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPreferencias_DefaultsYUpsert(t *testing.T) {
	f := newAPIFixture(t)
	var prefs []dto.PreferenceDTO
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/notificaciones/preferencias", f.admin(t), nil, &prefs))
	require.Len(t, prefs, 5)
	for _, p := range prefs {
		assert.True(t, p.Habilitada)
		assert.Equal(t, "inmediata", p.Frecuencia)
	}

	require.Equal(t, http.StatusOK, f.call(t, http.MethodPut, "/api/notificaciones/preferencias", f.admin(t),
		dto.PreferenceDTO{TipoNotificacion: "stock_bajo", Habilitada: false, Frecuencia: "inmediata"}, nil))
	assert.Equal(t, http.StatusBadRequest, f.call(t, http.MethodPut, "/api/notificaciones/preferencias", f.admin(t),
		dto.PreferenceDTO{TipoNotificacion: "stock_bajo", Habilitada: true, Frecuencia: "mensual"}, nil))

	// Con stock_bajo deshabilitada, el cron no la emite.
	f.createItem(t, "Sustrato", "3", "5")
	_, _ = f.runCron(t)
	var list dto.NotificationListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/notificaciones", f.admin(t), nil, &list))
	assert.Empty(t, list.Items)
}
