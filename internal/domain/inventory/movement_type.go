package inventory

import (
	"fmt"

	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementType variante cerrada de movimiento. El valor cero no es válido.
type MovementType int

const (
	Entrada MovementType = iota + 1
	Salida
	Ajuste
)

// ParseMovementType convierte el valor persistido ("entrada", "salida", "ajuste").
func ParseMovementType(s string) (MovementType, error) {
	switch s {
	case entity.MovimientoEntrada:
		return Entrada, nil
	case entity.MovimientoSalida:
		return Salida, nil
	case entity.MovimientoAjuste:
		return Ajuste, nil
	}
	return 0, fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrValidation, s)
}

func (t MovementType) String() string {
	switch t {
	case Entrada:
		return entity.MovimientoEntrada
	case Salida:
		return entity.MovimientoSalida
	case Ajuste:
		return entity.MovimientoAjuste
	}
	return "desconocido"
}

// ValidateQuantity: entrada y salida exigen cantidad > 0; ajuste acepta cualquier stock objetivo >= 0.
func (t MovementType) ValidateQuantity(cantidad decimal.Decimal) error {
	switch t {
	case Entrada, Salida:
		if !cantidad.IsPositive() {
			return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrValidation)
		}
	case Ajuste:
		if cantidad.IsNegative() {
			return fmt.Errorf("%w: el stock objetivo del ajuste no puede ser negativo", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: tipo de movimiento inválido", domain.ErrValidation)
	}
	return nil
}

// NextStock calcula stock_nuevo a partir de stock_anterior.
//
//	entrada: anterior + cantidad
//	salida:  anterior - cantidad
//	ajuste:  cantidad
func (t MovementType) NextStock(anterior, cantidad decimal.Decimal) decimal.Decimal {
	switch t {
	case Entrada:
		return anterior.Add(cantidad)
	case Salida:
		return anterior.Sub(cantidad)
	case Ajuste:
		return cantidad
	}
	return anterior
}

// CheckAvailability aplica la política de stock negativo a una salida.
func (t MovementType) CheckAvailability(anterior, cantidad decimal.Decimal, allowNegative bool) error {
	if t != Salida || allowNegative {
		return nil
	}
	if cantidad.GreaterThan(anterior) {
		return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, anterior.String(), cantidad.String())
	}
	return nil
}
