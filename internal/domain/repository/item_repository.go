package repository

import (
	"context"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ItemFilter filtros de listado de items.
type ItemFilter struct {
	SoloActivos   bool
	SoloStockBajo bool // stock_actual <= stock_minimo
	Categoria     string
	Busqueda      string // coincidencia parcial en nombre o código
	Limit         int
	Offset        int
}

// StockStats agregados de inventario por tenant.
type StockStats struct {
	TotalItems      int
	ItemsStockBajo  int
	ItemsCriticos   int
	ValorInventario decimal.Decimal
	Categorias      int
}

// ItemRepository define el puerto de persistencia para Item.
// Todas las consultas filtran por tenant; un id de otro tenant se comporta como inexistente.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, tenantID, itemID string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del item hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, itemID string) (*entity.Item, error)
	GetByCodigo(ctx context.Context, tenantID, codigo string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	UpdateStock(ctx context.Context, tenantID, itemID string, stock decimal.Decimal) error
	UpdateCost(ctx context.Context, tenantID, itemID string, cost decimal.Decimal) error
	SetActive(ctx context.Context, tenantID, itemID string, activo bool) error
	List(ctx context.Context, tenantID string, filter ItemFilter) ([]*entity.Item, error)
	ListActive(ctx context.Context, tenantID string) ([]*entity.Item, error)
	Stats(ctx context.Context, tenantID string) (*StockStats, error)
}
