package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/domain/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

var reorderFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase genera la lista de reposición de un tenant a partir del clasificador:
// items activos en bajo o crítico, con la cantidad sugerida hasta su stock objetivo.
type ReplenishmentUseCase struct {
	itemRepo repository.ItemRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(itemRepo repository.ItemRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{itemRepo: itemRepo}
}

// GenerateReplenishmentList devuelve los items a reponer ordenados por prioridad:
// primero críticos, luego mayor margen, finalmente mayor déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, tenantID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.itemRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, it := range items {
		ev := inventory.Evaluate(it)
		if ev.Level == inventory.LevelOK {
			continue
		}
		target := it.StockMinimo.Mul(reorderFactor)
		if it.StockMaximo != nil && it.StockMaximo.GreaterThan(it.StockMinimo) {
			target = *it.StockMaximo
		}
		qty := target.Sub(it.StockActual)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			IDItem:           it.IDItem,
			Codigo:           it.Codigo,
			Nombre:           it.Nombre,
			EstadoStock:      string(ev.Level),
			StockActual:      it.StockActual,
			StockMinimo:      it.StockMinimo,
			StockObjetivo:    target,
			CantidadSugerida: qty,
			PrecioCosto:      it.PrecioCosto,
			CostoEstimado:    qty.Mul(it.PrecioCosto).Round(2),
			MargenPorcentaje: ev.MargenPorcentaje,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.EstadoStock != b.EstadoStock {
			return a.EstadoStock == string(inventory.LevelCritico)
		}
		ma, mb := marginOrZero(a.MargenPorcentaje), marginOrZero(b.MargenPorcentaje)
		if !ma.Equal(mb) {
			return ma.GreaterThan(mb)
		}
		return a.CantidadSugerida.GreaterThan(b.CantidadSugerida)
	})
	for i := range suggestions {
		suggestions[i].Prioridad = i + 1
	}
	return suggestions, nil
}

func marginOrZero(m *decimal.Decimal) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return *m
}
