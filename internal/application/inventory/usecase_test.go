package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	appinv "github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/infrastructure/memory"
)

const (
	tenantID = "tenant-1"
	userID   = "user-1"
	taskID   = "task-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

type invFixture struct {
	store       *memory.Store
	items       *appinv.ItemUseCase
	movements   *appinv.RegisterMovementUseCase
	consumption *appinv.ConsumptionUseCase
	itemRepo    *memory.ItemRepo
	movRepo     *memory.MovementRepo
}

func newInvFixture(t *testing.T, policy appinv.Policy) *invFixture {
	t.Helper()
	store := memory.NewStore()
	store.AddTenant(entity.Tenant{IDTenant: tenantID, Activo: true})
	store.AddTask(entity.Task{IDTarea: taskID, IDTenant: tenantID, Titulo: "Siembra"})
	tx := memory.NewTxRunner(store)
	items := memory.NewItemRepository(store)
	movs := memory.NewMovementRepository(store)
	dir := memory.NewDirectoryRepository(store)
	return &invFixture{
		store:       store,
		items:       appinv.NewItemUseCase(tx, items, policy),
		movements:   appinv.NewRegisterMovementUseCase(tx, movs, dir, policy, zerolog.Nop()),
		consumption: appinv.NewConsumptionUseCase(tx, items, movs, dir, nil, policy, zerolog.Nop()),
		itemRepo:    items,
		movRepo:     movs,
	}
}

func (f *invFixture) create(t *testing.T, nombre, stock, minimo, costo string) *dto.ItemResponse {
	t.Helper()
	item, err := f.items.Create(context.Background(), tenantID, userID, dto.CreateItemRequest{
		Nombre: nombre, StockInicial: dec(stock), StockMinimo: dec(minimo), PrecioCosto: dec(costo),
	})
	require.NoError(t, err)
	return item
}

func (f *invFixture) stock(t *testing.T, itemID string) decimal.Decimal {
	t.Helper()
	it, err := f.itemRepo.GetByID(context.Background(), tenantID, itemID)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.StockActual
}

func (f *invFixture) apply(tipo, itemID, cantidad string) (*entity.Movement, error) {
	return f.movements.ApplyMovement(context.Background(), appinv.MovementInput{
		TenantID: tenantID, UserID: userID, ItemID: itemID, Tipo: tipo, Cantidad: dec(cantidad),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_SalidasConcurrentesSinPerderActualizaciones(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	item := f.create(t, "Sustrato", "10", "2", "100")

	const k = 25
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok         int
		rejected   int
		unexpected []error
	)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.apply(entity.MovimientoSalida, item.IDItem, "1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 10, ok)
	assert.Equal(t, k-10, rejected)
	assert.True(t, f.stock(t, item.IDItem).IsZero())

	// Conservación: stock = suma de deltas del ledger.
	movs, err := f.movRepo.ListByItem(context.Background(), tenantID, item.IDItem, 100, 0)
	require.NoError(t, err)
	require.Len(t, movs, 11)
	sum := decimal.Zero
	for _, m := range movs {
		sum = sum.Add(m.StockNuevo.Sub(m.StockAnterior))
	}
	assert.True(t, sum.IsZero())
}

func TestApplyMovement_CostoPromedioPonderado(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{WeightedCost: true})
	item := f.create(t, "Abono", "10", "2", "1000")

	_, err := f.movements.ApplyMovement(context.Background(), appinv.MovementInput{
		TenantID: tenantID, UserID: userID, ItemID: item.IDItem, Tipo: entity.MovimientoEntrada,
		Cantidad: dec("10"), PrecioUnitario: ptr(dec("2000")),
	})
	require.NoError(t, err)

	it, err := f.itemRepo.GetByID(context.Background(), tenantID, item.IDItem)
	require.NoError(t, err)
	assert.True(t, it.PrecioCosto.Equal(dec("1500")), it.PrecioCosto.String())
	assert.True(t, it.StockActual.Equal(dec("20")))
}

func TestApplyMovement_SinCostoPonderadoNoTocaPrecio(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	item := f.create(t, "Abono", "10", "2", "1000")

	_, err := f.movements.ApplyMovement(context.Background(), appinv.MovementInput{
		TenantID: tenantID, UserID: userID, ItemID: item.IDItem, Tipo: entity.MovimientoEntrada,
		Cantidad: dec("10"), PrecioUnitario: ptr(dec("2000")),
	})
	require.NoError(t, err)
	it, err := f.itemRepo.GetByID(context.Background(), tenantID, item.IDItem)
	require.NoError(t, err)
	assert.True(t, it.PrecioCosto.Equal(dec("1000")))
}

func TestApplyMovement_PoliticaStockNegativo(t *testing.T) {
	estricta := newInvFixture(t, appinv.Policy{})
	item := estricta.create(t, "Turba", "10", "2", "1")
	_, err := estricta.apply(entity.MovimientoSalida, item.IDItem, "15")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, estricta.stock(t, item.IDItem).Equal(dec("10")))

	permisiva := newInvFixture(t, appinv.Policy{AllowNegativeStock: true})
	item = permisiva.create(t, "Turba", "10", "2", "1")
	mov, err := permisiva.apply(entity.MovimientoSalida, item.IDItem, "15")
	require.NoError(t, err)
	assert.True(t, mov.StockNuevo.Equal(dec("-5")))
}

func TestApplyMovement_Validaciones(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	item := f.create(t, "Turba", "10", "2", "1")

	cases := []struct {
		name string
		in   appinv.MovementInput
		want error
	}{
		{"sin identidad", appinv.MovementInput{ItemID: item.IDItem, Tipo: "entrada", Cantidad: dec("1")}, domain.ErrUnauthorized},
		{"tipo desconocido", appinv.MovementInput{TenantID: tenantID, UserID: userID, ItemID: item.IDItem, Tipo: "traslado", Cantidad: dec("1")}, domain.ErrValidation},
		{"cantidad cero", appinv.MovementInput{TenantID: tenantID, UserID: userID, ItemID: item.IDItem, Tipo: "salida", Cantidad: dec("0")}, domain.ErrValidation},
		{"proveedor en salida", appinv.MovementInput{TenantID: tenantID, UserID: userID, ItemID: item.IDItem, Tipo: "salida", Cantidad: dec("1"), IDProveedor: ptr("p")}, domain.ErrValidation},
		{"item de otro tenant", appinv.MovementInput{TenantID: "otro", UserID: userID, ItemID: item.IDItem, Tipo: "entrada", Cantidad: dec("1")}, domain.ErrNotFound},
		{"tarea inexistente", appinv.MovementInput{TenantID: tenantID, UserID: userID, ItemID: item.IDItem, Tipo: "salida", Cantidad: dec("1"), IDTarea: ptr("nope")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.movements.ApplyMovement(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.True(t, f.stock(t, item.IDItem).Equal(dec("10")), "ningún intento fallido modifica el stock")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumo por tarea
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterConsumption_LoteAtomico(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	a := f.create(t, "Semillas", "10", "1", "50")
	b := f.create(t, "Bandejas", "2", "1", "300")

	_, err := f.consumption.RegisterConsumption(context.Background(), tenantID, userID, taskID, []appinv.ConsumptionLine{
		{ItemID: a.IDItem, Cantidad: dec("4")},
		{ItemID: b.IDItem, Cantidad: dec("3")},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, a.IDItem).Equal(dec("10")))
	assert.True(t, f.stock(t, b.IDItem).Equal(dec("2")))

	movs, err := f.consumption.ListConsumptionByTask(context.Background(), tenantID, taskID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRegisterConsumption_ItemDesconocidoEnMedioDelLote(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	a := f.create(t, "Semillas", "10", "1", "50")
	c := f.create(t, "Turba", "10", "1", "80")

	_, err := f.consumption.RegisterConsumption(context.Background(), tenantID, userID, taskID, []appinv.ConsumptionLine{
		{ItemID: a.IDItem, Cantidad: dec("2")},
		{ItemID: "no-existe", Cantidad: dec("1")},
		{ItemID: c.IDItem, Cantidad: dec("3")},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.stock(t, a.IDItem).Equal(dec("10")))
	assert.True(t, f.stock(t, c.IDItem).Equal(dec("10")))

	movs, err := f.consumption.ListConsumptionByTask(context.Background(), tenantID, taskID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestListConsumptionByTask_LineasEnOrdenDelLote(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	ids := []string{
		f.create(t, "Turba", "10", "1", "80").IDItem,
		f.create(t, "Semillas", "10", "1", "50").IDItem,
		f.create(t, "Bandejas", "10", "1", "300").IDItem,
	}
	lines := make([]appinv.ConsumptionLine, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, appinv.ConsumptionLine{ItemID: id, Cantidad: dec("1")})
	}
	_, err := f.consumption.RegisterConsumption(context.Background(), tenantID, userID, taskID, lines)
	require.NoError(t, err)

	movs, err := f.consumption.ListConsumptionByTask(context.Background(), tenantID, taskID)
	require.NoError(t, err)
	got := make([]string, 0, len(movs))
	for _, m := range movs {
		got = append(got, m.IDItem)
	}
	assert.Equal(t, ids, got)
}

func TestRegisterConsumption_LineasRepetidasSeSuman(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	a := f.create(t, "Semillas", "5", "1", "50")

	_, err := f.consumption.RegisterConsumption(context.Background(), tenantID, userID, taskID, []appinv.ConsumptionLine{
		{ItemID: a.IDItem, Cantidad: dec("3")},
		{ItemID: a.IDItem, Cantidad: dec("3")},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	movs, err := f.consumption.RegisterConsumption(context.Background(), tenantID, userID, taskID, []appinv.ConsumptionLine{
		{ItemID: a.IDItem, Cantidad: dec("2")},
		{ItemID: a.IDItem, Cantidad: dec("3"), Motivo: "resiembra"},
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.True(t, movs[0].StockNuevo.Equal(dec("3")))
	assert.True(t, movs[1].StockAnterior.Equal(dec("3")))
	assert.True(t, movs[1].StockNuevo.IsZero())
	assert.Equal(t, "consumo de tarea", movs[0].Motivo)
	assert.Equal(t, "resiembra", movs[1].Motivo)
	require.NotNil(t, movs[0].IDTarea)
	assert.Equal(t, taskID, *movs[0].IDTarea)
}

func TestRegisterConsumption_Resumen(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	a := f.create(t, "Semillas", "10", "1", "50")
	b := f.create(t, "Bandejas", "5", "1", "300")
	_, err := f.consumption.RegisterConsumption(context.Background(), tenantID, userID, taskID, []appinv.ConsumptionLine{
		{ItemID: a.IDItem, Cantidad: dec("4")},
		{ItemID: b.IDItem, Cantidad: dec("1")},
		{ItemID: a.IDItem, Cantidad: dec("2")},
	})
	require.NoError(t, err)

	sum, err := f.consumption.ConsumptionSummary(context.Background(), tenantID, taskID)
	require.NoError(t, err)
	require.Len(t, sum.Items, 2)
	assert.True(t, sum.CostoTotal.Equal(dec("600")), sum.CostoTotal.String())

	_, err = f.consumption.ConsumptionSummary(context.Background(), "otro", taskID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterConsumption_LoteVacio(t *testing.T) {
	f := newInvFixture(t, appinv.Policy{})
	_, err := f.consumption.RegisterConsumption(context.Background(), tenantID, userID, taskID, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
