package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (valores persistidos, parte del contrato externo).
const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
	MovimientoAjuste  = "ajuste"
)

// Movement es una fila inmutable del ledger de un item.
// Cantidad es el delta solicitado (entrada/salida) o el stock absoluto objetivo (ajuste).
type Movement struct {
	IDMovimiento   string
	IDTenant       string
	IDItem         string
	Tipo           string
	Cantidad       decimal.Decimal
	PrecioUnitario *decimal.Decimal
	Motivo         string
	Referencia     string
	IDProveedor    *string // solo entrada
	Notas          string
	StockAnterior  decimal.Decimal
	StockNuevo     decimal.Decimal
	Fecha          time.Time
	IDUsuario      string
	IDTarea        *string
}

// Delta devuelve stock_nuevo - stock_anterior.
func (m *Movement) Delta() decimal.Decimal {
	return m.StockNuevo.Sub(m.StockAnterior)
}
