package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// Policy flags del ledger.
type Policy struct {
	// AllowNegativeStock permite salidas mayores al stock (consumo contra pedido pendiente).
	AllowNegativeStock bool
	// WeightedCost recalcula precio_costo con promedio ponderado en entradas con precio_unitario.
	WeightedCost bool
}

// lockItem bloquea el item dentro de la tx. Inexistente o de otro tenant -> ErrNotFound.
func lockItem(ctx context.Context, itemRepo repository.ItemRepository, tenantID, itemID string) (*entity.Item, error) {
	item, err := itemRepo.GetForUpdate(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	if !item.Activo {
		return nil, fmt.Errorf("%w: item %s inactivo", domain.ErrValidation, itemID)
	}
	return item, nil
}

// applyLocked aplica un movimiento sobre un item ya bloqueado en la misma tx y deja
// item.StockActual actualizado para líneas siguientes del mismo lote.
func applyLocked(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	item *entity.Item,
	mt inventory.MovementType,
	in MovementInput,
	policy Policy,
	now time.Time,
) (*entity.Movement, error) {
	anterior := item.StockActual
	if err := mt.CheckAvailability(anterior, in.Cantidad, policy.AllowNegativeStock); err != nil {
		return nil, err
	}
	nuevo := mt.NextStock(anterior, in.Cantidad)

	if mt == inventory.Entrada && policy.WeightedCost && in.PrecioUnitario != nil {
		cost := inventory.CostCalculator(anterior, item.PrecioCosto, in.Cantidad, *in.PrecioUnitario)
		if !cost.Equal(item.PrecioCosto) {
			if err := itemRepo.UpdateCost(ctx, item.IDTenant, item.IDItem, cost); err != nil {
				return nil, err
			}
			item.PrecioCosto = cost
		}
	}
	if err := itemRepo.UpdateStock(ctx, item.IDTenant, item.IDItem, nuevo); err != nil {
		return nil, err
	}

	mov := &entity.Movement{
		IDMovimiento:   uuid.New().String(),
		IDTenant:       item.IDTenant,
		IDItem:         item.IDItem,
		Tipo:           mt.String(),
		Cantidad:       in.Cantidad,
		PrecioUnitario: in.PrecioUnitario,
		Motivo:         in.Motivo,
		Referencia:     in.Referencia,
		IDProveedor:    in.IDProveedor,
		Notas:          in.Notas,
		StockAnterior:  anterior,
		StockNuevo:     nuevo,
		Fecha:          now,
		IDUsuario:      in.UserID,
		IDTarea:        in.IDTarea,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	item.StockActual = nuevo
	item.UpdatedAt = now
	return mov, nil
}

func nonNegative(p *decimal.Decimal) bool {
	return p == nil || !p.IsNegative()
}
