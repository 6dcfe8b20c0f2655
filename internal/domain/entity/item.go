package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un insumo o producto del inventario del vivero (scoped por tenant).
// StockActual es la caché del ledger: solo cambia a través de movimientos.
type Item struct {
	IDItem       string
	IDTenant     string
	Codigo       *string // SKU opcional, único por tenant
	Nombre       string
	Categoria    *string
	UnidadMedida string
	StockActual  decimal.Decimal
	StockMinimo  decimal.Decimal
	StockMaximo  *decimal.Decimal
	PrecioCosto  decimal.Decimal
	PrecioVenta  *decimal.Decimal
	Activo       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockBajo indica stock_actual <= stock_minimo.
func (i *Item) StockBajo() bool {
	return i.StockActual.LessThanOrEqual(i.StockMinimo)
}

// ValorInventario devuelve stock_actual × precio_costo.
func (i *Item) ValorInventario() decimal.Decimal {
	return i.StockActual.Mul(i.PrecioCosto)
}
