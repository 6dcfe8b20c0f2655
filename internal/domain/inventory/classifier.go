package inventory

import (
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Level clasificación de stock.
type Level string

const (
	LevelOK      Level = "ok"
	LevelBajo    Level = "bajo"
	LevelCritico Level = "critico"
)

var hundred = decimal.NewFromInt(100)

// Classify: critico si stock <= 0, bajo si 0 < stock <= minimo, ok en otro caso.
func Classify(stock, minimo decimal.Decimal) Level {
	if !stock.IsPositive() {
		return LevelCritico
	}
	if stock.LessThanOrEqual(minimo) {
		return LevelBajo
	}
	return LevelOK
}

// Margin devuelve (venta - costo) / costo × 100 redondeado a 2 decimales.
// ok=false cuando falta el precio de venta o el costo es cero.
func Margin(costo decimal.Decimal, venta *decimal.Decimal) (decimal.Decimal, bool) {
	if venta == nil || costo.IsZero() {
		return decimal.Zero, false
	}
	return venta.Sub(costo).Div(costo).Mul(hundred).Round(2), true
}

// Evaluation resultado de clasificar un item.
type Evaluation struct {
	Level            Level
	StockBajo        bool
	MargenPorcentaje *decimal.Decimal
}

// Evaluate clasifica un snapshot de item. Sin I/O.
func Evaluate(item *entity.Item) Evaluation {
	ev := Evaluation{
		Level:     Classify(item.StockActual, item.StockMinimo),
		StockBajo: item.StockBajo(),
	}
	if m, ok := Margin(item.PrecioCosto, item.PrecioVenta); ok {
		ev.MargenPorcentaje = &m
	}
	return ev
}
