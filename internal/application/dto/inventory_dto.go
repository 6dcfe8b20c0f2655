package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// CreateItemRequest body para POST /api/inventario/items.
// stock_inicial > 0 se registra como una entrada "stock inicial" en el ledger.
type CreateItemRequest struct {
	Codigo       *string          `json:"codigo,omitempty"`
	Nombre       string           `json:"nombre"`
	Categoria    *string          `json:"categoria,omitempty"`
	UnidadMedida string           `json:"unidad_medida"`
	StockInicial decimal.Decimal  `json:"stock_inicial"`
	StockMinimo  decimal.Decimal  `json:"stock_minimo"`
	StockMaximo  *decimal.Decimal `json:"stock_maximo,omitempty"`
	PrecioCosto  decimal.Decimal  `json:"precio_costo"`
	PrecioVenta  *decimal.Decimal `json:"precio_venta,omitempty"`
}

// UpdateItemRequest body para PUT /api/inventario/items/:id. El stock no se edita: solo vía movimientos.
type UpdateItemRequest struct {
	Codigo       *string          `json:"codigo,omitempty"`
	Nombre       *string          `json:"nombre,omitempty"`
	Categoria    *string          `json:"categoria,omitempty"`
	UnidadMedida *string          `json:"unidad_medida,omitempty"`
	StockMinimo  *decimal.Decimal `json:"stock_minimo,omitempty"`
	StockMaximo  *decimal.Decimal `json:"stock_maximo,omitempty"`
	PrecioCosto  *decimal.Decimal `json:"precio_costo,omitempty"`
	PrecioVenta  *decimal.Decimal `json:"precio_venta,omitempty"`
}

// SetActiveRequest body para PATCH /api/inventario/items/:id/activo.
type SetActiveRequest struct {
	Activo bool `json:"activo"`
}

// ItemResponse item con sus valores derivados (estado, margen).
type ItemResponse struct {
	IDItem           string           `json:"id_item"`
	Codigo           *string          `json:"codigo"`
	Nombre           string           `json:"nombre"`
	Categoria        *string          `json:"categoria"`
	UnidadMedida     string           `json:"unidad_medida"`
	StockActual      decimal.Decimal  `json:"stock_actual"`
	StockMinimo      decimal.Decimal  `json:"stock_minimo"`
	StockMaximo      *decimal.Decimal `json:"stock_maximo"`
	PrecioCosto      decimal.Decimal  `json:"precio_costo"`
	PrecioVenta      *decimal.Decimal `json:"precio_venta"`
	Activo           bool             `json:"activo"`
	StockBajo        bool             `json:"stock_bajo"`
	EstadoStock      string           `json:"estado_stock"` // ok | bajo | critico
	MargenPorcentaje *decimal.Decimal `json:"margen_porcentaje"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ItemListResponse listado paginado de items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// StockStatsResponse agregados de GET /api/inventario/stats.
type StockStatsResponse struct {
	TotalItems      int             `json:"total_items"`
	ItemsStockBajo  int             `json:"items_stock_bajo"`
	ItemsCriticos   int             `json:"items_stock_critico"`
	ValorInventario decimal.Decimal `json:"valor_total_inventario"`
	Categorias      int             `json:"total_categorias"`
}

// RegisterMovementRequest body para POST /api/inventario/movimientos.
// Para ajuste, cantidad es el stock absoluto objetivo.
type RegisterMovementRequest struct {
	IDItem         string           `json:"id_item"`
	Tipo           string           `json:"tipo"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario,omitempty"`
	Motivo         string           `json:"motivo"`
	Referencia     string           `json:"referencia"`
	IDProveedor    *string          `json:"id_proveedor,omitempty"`
	Notas          string           `json:"notas"`
	IDTarea        *string          `json:"id_tarea,omitempty"`
}

// MovementResponse fila del ledger.
type MovementResponse struct {
	IDMovimiento   string           `json:"id_movimiento"`
	IDItem         string           `json:"id_item"`
	Tipo           string           `json:"tipo"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	Motivo         string           `json:"motivo"`
	Referencia     string           `json:"referencia"`
	IDProveedor    *string          `json:"id_proveedor"`
	Notas          string           `json:"notas"`
	StockAnterior  decimal.Decimal  `json:"stock_anterior"`
	StockNuevo     decimal.Decimal  `json:"stock_nuevo"`
	Fecha          time.Time        `json:"fecha"`
	IDUsuario      string           `json:"id_usuario"`
	IDTarea        *string          `json:"id_tarea"`
}

// NewMovementResponse convierte la entidad al contrato externo.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		IDMovimiento:   m.IDMovimiento,
		IDItem:         m.IDItem,
		Tipo:           m.Tipo,
		Cantidad:       m.Cantidad,
		PrecioUnitario: m.PrecioUnitario,
		Motivo:         m.Motivo,
		Referencia:     m.Referencia,
		IDProveedor:    m.IDProveedor,
		Notas:          m.Notas,
		StockAnterior:  m.StockAnterior,
		StockNuevo:     m.StockNuevo,
		Fecha:          m.Fecha,
		IDUsuario:      m.IDUsuario,
		IDTarea:        m.IDTarea,
	}
}

// NewMovementListResponse convierte una lista de movimientos.
func NewMovementListResponse(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, NewMovementResponse(m))
	}
	return out
}

// ConsumptionLineRequest una línea del lote de materiales.
type ConsumptionLineRequest struct {
	IDItem   string          `json:"id_item"`
	Cantidad decimal.Decimal `json:"cantidad"`
	Motivo   string          `json:"motivo"`
}

// RegisterConsumptionRequest body para POST /api/tareas/:id/materiales.
type RegisterConsumptionRequest struct {
	Items []ConsumptionLineRequest `json:"items"`
}

// ConsumptionItemDTO consumo agregado de un item en la tarea.
type ConsumptionItemDTO struct {
	IDItem       string          `json:"id_item"`
	Nombre       string          `json:"nombre"`
	UnidadMedida string          `json:"unidad_medida"`
	Cantidad     decimal.Decimal `json:"cantidad"`
	PrecioCosto  decimal.Decimal `json:"precio_costo"`
	Costo        decimal.Decimal `json:"costo"` // cantidad * precio_costo
}

// ConsumptionSummaryResponse vista de auditoría "materiales consumidos por tarea".
type ConsumptionSummaryResponse struct {
	IDTarea     string               `json:"id_tarea"`
	Titulo      string               `json:"titulo"`
	Items       []ConsumptionItemDTO `json:"items"`
	Movimientos []MovementResponse   `json:"movimientos"`
	CostoTotal  decimal.Decimal      `json:"costo_total"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un item en o bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	IDItem           string           `json:"id_item"`
	Codigo           *string          `json:"codigo"`
	Nombre           string           `json:"nombre"`
	EstadoStock      string           `json:"estado_stock"`
	StockActual      decimal.Decimal  `json:"stock_actual"`
	StockMinimo      decimal.Decimal  `json:"stock_minimo"`
	StockObjetivo    decimal.Decimal  `json:"stock_objetivo"`    // stock_maximo o stock_minimo * 1.5
	CantidadSugerida decimal.Decimal  `json:"cantidad_sugerida"` // stock_objetivo - stock_actual
	PrecioCosto      decimal.Decimal  `json:"precio_costo"`
	CostoEstimado    decimal.Decimal  `json:"costo_estimado"`
	MargenPorcentaje *decimal.Decimal `json:"margen_porcentaje"`
	Prioridad        int              `json:"prioridad"` // 1 = más urgente
}
