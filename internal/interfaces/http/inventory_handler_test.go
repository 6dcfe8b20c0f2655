package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vivero-api/internal/application/dto"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *apiFixture) createItem(t *testing.T, nombre, stock, minimo string) dto.ItemResponse {
	t.Helper()
	var item dto.ItemResponse
	code := f.call(t, http.MethodPost, "/api/inventario/items", f.admin(t), dto.CreateItemRequest{
		Nombre:       nombre,
		UnidadMedida: "kg",
		StockInicial: dec(stock),
		StockMinimo:  dec(minimo),
		PrecioCosto:  dec("1000"),
	}, &item)
	require.Equal(t, http.StatusCreated, code)
	return item
}

func (f *apiFixture) move(t *testing.T, itemID, tipo, cantidad string) (int, dto.MovementResponse) {
	t.Helper()
	var mov dto.MovementResponse
	code := f.call(t, http.MethodPost, "/api/inventario/movimientos", f.admin(t), dto.RegisterMovementRequest{
		IDItem: itemID, Tipo: tipo, Cantidad: dec(cantidad), Motivo: "test",
	}, &mov)
	return code, mov
}

// ──────────────────────────────────────────────────────────────────────────────
// Items y movimientos
// ──────────────────────────────────────────────────────────────────────────────

// Escenario: stock 10 / mínimo 5; salida 6 -> 4 (bajo); salida 4 -> 0 (crítico); salida 1 -> 409.
func TestMovimientos_Escenario10a4a0(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createItem(t, "Sustrato", "10", "5")
	assert.True(t, item.StockActual.Equal(dec("10")))
	assert.Equal(t, "ok", item.EstadoStock)

	code, mov := f.move(t, item.IDItem, "salida", "6")
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, mov.StockAnterior.Equal(dec("10")))
	assert.True(t, mov.StockNuevo.Equal(dec("4")))

	var got dto.ItemResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/items/"+item.IDItem, f.admin(t), nil, &got))
	assert.Equal(t, "bajo", got.EstadoStock)
	assert.True(t, got.StockBajo)

	code, mov = f.move(t, item.IDItem, "salida", "4")
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, mov.StockNuevo.IsZero())
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/items/"+item.IDItem, f.admin(t), nil, &got))
	assert.Equal(t, "critico", got.EstadoStock)

	var errResp dto.ErrorResponse
	code = f.call(t, http.MethodPost, "/api/inventario/movimientos", f.admin(t), dto.RegisterMovementRequest{
		IDItem: item.IDItem, Tipo: "salida", Cantidad: dec("1"),
	}, &errResp)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)

	// Historial: stock inicial + 2 salidas, más reciente primero.
	var hist []dto.MovementResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/items/"+item.IDItem+"/movimientos", f.admin(t), nil, &hist))
	require.Len(t, hist, 3)
	sum := decimal.Zero
	for _, m := range hist {
		sum = sum.Add(m.StockNuevo.Sub(m.StockAnterior))
	}
	assert.True(t, sum.IsZero(), "la suma de deltas debe igualar el stock actual (0)")
}

func TestMovimientos_AjusteIdempotente(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createItem(t, "Maceta 12cm", "20", "5")

	code, first := f.move(t, item.IDItem, "ajuste", "15")
	require.Equal(t, http.StatusCreated, code)
	code, second := f.move(t, item.IDItem, "ajuste", "15")
	require.Equal(t, http.StatusCreated, code)

	assert.True(t, first.StockNuevo.Equal(dec("15")))
	assert.True(t, second.StockAnterior.Equal(dec("15")))
	assert.True(t, second.StockNuevo.Equal(dec("15")))
}

func TestMovimientos_Validaciones(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createItem(t, "Abono", "5", "1")

	code, _ := f.move(t, item.IDItem, "traslado", "1")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.move(t, item.IDItem, "entrada", "0")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.move(t, "no-existe", "entrada", "1")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestItems_AislamientoPorTenant(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createItem(t, "Turba", "10", "2")
	other := bearer(t, otherTenantID, otherUserID, "admin")

	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodGet, "/api/inventario/items/"+item.IDItem, other, nil, nil))

	var errResp dto.ErrorResponse
	code := f.call(t, http.MethodPost, "/api/inventario/movimientos", other, dto.RegisterMovementRequest{
		IDItem: item.IDItem, Tipo: "salida", Cantidad: dec("1"),
	}, &errResp)
	assert.Equal(t, http.StatusNotFound, code)

	var list dto.ItemListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/items", other, nil, &list))
	assert.Empty(t, list.Items)
}

func TestItems_CodigoDuplicado(t *testing.T) {
	f := newAPIFixture(t)
	codigo := "SUS-01"
	req := dto.CreateItemRequest{Codigo: &codigo, Nombre: "Sustrato", UnidadMedida: "kg"}
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/inventario/items", f.admin(t), req, nil))

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodPost, "/api/inventario/items", f.admin(t), req, &errResp))
	assert.Equal(t, "DUPLICATE", errResp.Code)

	// Otro tenant puede usar el mismo código.
	other := bearer(t, otherTenantID, otherUserID, "admin")
	assert.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/inventario/items", other, req, nil))
}

func TestItems_OperarioNoEditaCatalogo(t *testing.T) {
	f := newAPIFixture(t)
	operario := bearer(t, testTenantID, testUserID, "operario")
	code := f.call(t, http.MethodPost, "/api/inventario/items", operario, dto.CreateItemRequest{Nombre: "X"}, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestItems_UpdateNoTocaStock(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createItem(t, "Fertilizante", "8", "2")
	nombre := "Fertilizante NPK"
	minimo := dec("10")

	var got dto.ItemResponse
	code := f.call(t, http.MethodPut, "/api/inventario/items/"+item.IDItem, f.admin(t), dto.UpdateItemRequest{
		Nombre: &nombre, StockMinimo: &minimo,
	}, &got)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, nombre, got.Nombre)
	assert.True(t, got.StockActual.Equal(dec("8")))
	assert.Equal(t, "bajo", got.EstadoStock)
}

func TestItems_Desactivar(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createItem(t, "Malla", "3", "1")

	require.Equal(t, http.StatusNoContent, f.call(t, http.MethodPatch, "/api/inventario/items/"+item.IDItem+"/activo", f.admin(t), dto.SetActiveRequest{Activo: false}, nil))

	var list dto.ItemListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/items", f.admin(t), nil, &list))
	assert.Empty(t, list.Items)
	code, _ := f.move(t, item.IDItem, "entrada", "1")
	assert.Equal(t, http.StatusBadRequest, code, "un item inactivo no acepta movimientos")
}

func TestStatsYReposicion(t *testing.T) {
	f := newAPIFixture(t)
	f.createItem(t, "A", "10", "5")
	f.createItem(t, "B", "3", "5")
	f.createItem(t, "C", "0", "5")

	var stats dto.StockStatsResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/stats", f.admin(t), nil, &stats))
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 2, stats.ItemsStockBajo)
	assert.Equal(t, 1, stats.ItemsCriticos)
	assert.True(t, stats.ValorInventario.Equal(dec("13000")))

	var rep struct {
		Total      int                              `json:"total"`
		Reposicion []dto.ReplenishmentSuggestionDTO `json:"reposicion"`
	}
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/reposicion", f.admin(t), nil, &rep))
	require.Equal(t, 2, rep.Total)
	assert.Equal(t, "C", rep.Reposicion[0].Nombre, "el crítico va primero")
	assert.True(t, rep.Reposicion[0].CantidadSugerida.Equal(dec("7.5")))
	assert.True(t, rep.Reposicion[1].CantidadSugerida.Equal(dec("4.5")))
}

func TestSinToken_Retorna401(t *testing.T) {
	f := newAPIFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.call(t, http.MethodGet, "/api/inventario/items", "", nil, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Materiales por tarea
// ──────────────────────────────────────────────────────────────────────────────

func TestConsumo_LoteAtomico(t *testing.T) {
	f := newAPIFixture(t)
	a := f.createItem(t, "Fungicida", "10", "1")
	b := f.createItem(t, "Guantes", "2", "1")
	path := "/api/tareas/" + testTaskID + "/materiales"

	// La segunda línea excede el stock: no se aplica ninguna.
	var errResp dto.ErrorResponse
	code := f.call(t, http.MethodPost, path, f.admin(t), dto.RegisterConsumptionRequest{Items: []dto.ConsumptionLineRequest{
		{IDItem: a.IDItem, Cantidad: dec("3")},
		{IDItem: b.IDItem, Cantidad: dec("5")},
	}}, &errResp)
	assert.Equal(t, http.StatusConflict, code)

	var got dto.ItemResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventario/items/"+a.IDItem, f.admin(t), nil, &got))
	assert.True(t, got.StockActual.Equal(dec("10")), "el lote fallido no debe descontar stock")

	var movs []dto.MovementResponse
	code = f.call(t, http.MethodPost, path, f.admin(t), dto.RegisterConsumptionRequest{Items: []dto.ConsumptionLineRequest{
		{IDItem: a.IDItem, Cantidad: dec("3")},
		{IDItem: b.IDItem, Cantidad: dec("2")},
	}}, &movs)
	require.Equal(t, http.StatusCreated, code)
	require.Len(t, movs, 2)
	for _, m := range movs {
		require.NotNil(t, m.IDTarea)
		assert.Equal(t, testTaskID, *m.IDTarea)
		assert.Equal(t, "salida", m.Tipo)
	}

	var summary dto.ConsumptionSummaryResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, path, f.admin(t), nil, &summary))
	assert.Equal(t, "Fumigación", summary.Titulo)
	assert.Len(t, summary.Items, 2)
	assert.True(t, summary.CostoTotal.Equal(dec("5000")))
}

func TestConsumo_TareaDeOtroTenant(t *testing.T) {
	f := newAPIFixture(t)
	other := bearer(t, otherTenantID, otherUserID, "admin")
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodGet, "/api/tareas/"+testTaskID+"/materiales", other, nil, nil))
}

func TestConsumo_PDF(t *testing.T) {
	f := newAPIFixture(t)
	a := f.createItem(t, "Fungicida", "10", "1")
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/tareas/"+testTaskID+"/materiales", f.admin(t),
		dto.RegisterConsumptionRequest{Items: []dto.ConsumptionLineRequest{{IDItem: a.IDItem, Cantidad: dec("1")}}}, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/tareas/"+testTaskID+"/materiales/pdf", nil)
	req.Header.Set("Authorization", f.admin(t))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestIDsMalFormados_Son404(t *testing.T) {
	f := newAPIFixture(t)
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodGet, "/api/inventario/items/abc", f.admin(t), nil, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodPost, "/api/tareas/"+testTaskID+"/materiales", f.admin(t),
		dto.RegisterConsumptionRequest{Items: []dto.ConsumptionLineRequest{{IDItem: "x", Cantidad: dec("1")}}}, nil))
	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodPatch, "/api/notificaciones/foo/leida", f.admin(t), nil, nil))
}
