package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

const motivoStockInicial = "stock inicial"

// ItemUseCase catálogo de items y estadísticas. El stock solo cambia vía movimientos.
type ItemUseCase struct {
	txRunner TxRunner
	repo     repository.ItemRepository
	policy   Policy
	now      func() time.Time
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(txRunner TxRunner, repo repository.ItemRepository, policy Policy) *ItemUseCase {
	return &ItemUseCase{txRunner: txRunner, repo: repo, policy: policy, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ItemUseCase) WithClock(now func() time.Time) *ItemUseCase {
	uc.now = now
	return uc
}

func validatePrices(costo decimal.Decimal, venta *decimal.Decimal, minimo decimal.Decimal, maximo *decimal.Decimal) error {
	if costo.IsNegative() || !nonNegative(venta) {
		return fmt.Errorf("%w: precios negativos", domain.ErrValidation)
	}
	if minimo.IsNegative() {
		return fmt.Errorf("%w: stock_minimo negativo", domain.ErrValidation)
	}
	if maximo != nil && maximo.LessThan(minimo) {
		return fmt.Errorf("%w: stock_maximo menor que stock_minimo", domain.ErrValidation)
	}
	return nil
}

func normalizeCodigo(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}

// Create registra un item. Si trae stock_inicial se asienta como entrada en la misma transacción,
// de modo que stock_actual coincide con el ledger desde el alta.
func (uc *ItemUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if tenantID == "" || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	in.Nombre = strings.TrimSpace(in.Nombre)
	if in.Nombre == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrValidation)
	}
	if in.StockInicial.IsNegative() {
		return nil, fmt.Errorf("%w: stock_inicial negativo", domain.ErrValidation)
	}
	if err := validatePrices(in.PrecioCosto, in.PrecioVenta, in.StockMinimo, in.StockMaximo); err != nil {
		return nil, err
	}
	if in.UnidadMedida == "" {
		in.UnidadMedida = "unidad"
	}
	now := uc.now()
	item := &entity.Item{
		IDItem:       uuid.New().String(),
		IDTenant:     tenantID,
		Codigo:       normalizeCodigo(in.Codigo),
		Nombre:       in.Nombre,
		Categoria:    in.Categoria,
		UnidadMedida: in.UnidadMedida,
		StockActual:  decimal.Zero,
		StockMinimo:  in.StockMinimo,
		StockMaximo:  in.StockMaximo,
		PrecioCosto:  in.PrecioCosto,
		PrecioVenta:  in.PrecioVenta,
		Activo:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, movRepo repository.MovementRepository) error {
		if item.Codigo != nil {
			existing, err := itemRepo.GetByCodigo(ctx, tenantID, *item.Codigo)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: código %s", domain.ErrDuplicate, *item.Codigo)
			}
		}
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		if !in.StockInicial.IsPositive() {
			return nil
		}
		precio := item.PrecioCosto
		_, err := applyLocked(ctx, itemRepo, movRepo, item, inventory.Entrada, MovementInput{
			TenantID:       tenantID,
			UserID:         userID,
			ItemID:         item.IDItem,
			Tipo:           entity.MovimientoEntrada,
			Cantidad:       in.StockInicial,
			PrecioUnitario: &precio,
			Motivo:         motivoStockInicial,
		}, uc.policy, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un item del tenant.
func (uc *ItemUseCase) GetByID(ctx context.Context, tenantID, itemID string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	return toItemResponse(item), nil
}

// Update modifica datos descriptivos, umbrales y precios. Nunca stock_actual.
// Corre con el item bloqueado: una entrada concurrente que re-promedia precio_costo no se pisa.
func (uc *ItemUseCase) Update(ctx context.Context, tenantID, itemID string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	var updated *entity.Item
	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, _ repository.MovementRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
		}
		if err := uc.applyUpdate(ctx, itemRepo, item, in); err != nil {
			return err
		}
		item.UpdatedAt = uc.now()
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(updated), nil
}

func (uc *ItemUseCase) applyUpdate(ctx context.Context, itemRepo repository.ItemRepository, item *entity.Item, in dto.UpdateItemRequest) error {
	if in.Codigo != nil {
		codigo := normalizeCodigo(in.Codigo)
		if codigo != nil && (item.Codigo == nil || *item.Codigo != *codigo) {
			existing, err := itemRepo.GetByCodigo(ctx, item.IDTenant, *codigo)
			if err != nil {
				return err
			}
			if existing != nil && existing.IDItem != item.IDItem {
				return fmt.Errorf("%w: código %s", domain.ErrDuplicate, *codigo)
			}
		}
		item.Codigo = codigo
	}
	if in.Nombre != nil {
		if strings.TrimSpace(*in.Nombre) == "" {
			return fmt.Errorf("%w: nombre requerido", domain.ErrValidation)
		}
		item.Nombre = strings.TrimSpace(*in.Nombre)
	}
	if in.Categoria != nil {
		item.Categoria = in.Categoria
	}
	if in.UnidadMedida != nil {
		item.UnidadMedida = *in.UnidadMedida
	}
	if in.StockMinimo != nil {
		item.StockMinimo = *in.StockMinimo
	}
	if in.StockMaximo != nil {
		item.StockMaximo = in.StockMaximo
	}
	if in.PrecioCosto != nil {
		item.PrecioCosto = *in.PrecioCosto
	}
	if in.PrecioVenta != nil {
		item.PrecioVenta = in.PrecioVenta
	}
	return validatePrices(item.PrecioCosto, item.PrecioVenta, item.StockMinimo, item.StockMaximo)
}

// SetActive habilita o deshabilita (soft) un item. Los items no se borran físicamente.
func (uc *ItemUseCase) SetActive(ctx context.Context, tenantID, itemID string, activo bool) error {
	item, err := uc.repo.GetByID(ctx, tenantID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	return uc.repo.SetActive(ctx, tenantID, itemID, activo)
}

// List lista items del tenant con clasificación y margen derivados.
func (uc *ItemUseCase) List(ctx context.Context, tenantID string, filter repository.ItemFilter) (*dto.ItemListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Stats agregados del inventario: total de items, stock bajo, valor total y categorías.
func (uc *ItemUseCase) Stats(ctx context.Context, tenantID string) (*dto.StockStatsResponse, error) {
	s, err := uc.repo.Stats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &dto.StockStatsResponse{
		TotalItems:      s.TotalItems,
		ItemsStockBajo:  s.ItemsStockBajo,
		ItemsCriticos:   s.ItemsCriticos,
		ValorInventario: s.ValorInventario.Round(2),
		Categorias:      s.Categorias,
	}, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	ev := inventory.Evaluate(it)
	return &dto.ItemResponse{
		IDItem:           it.IDItem,
		Codigo:           it.Codigo,
		Nombre:           it.Nombre,
		Categoria:        it.Categoria,
		UnidadMedida:     it.UnidadMedida,
		StockActual:      it.StockActual,
		StockMinimo:      it.StockMinimo,
		StockMaximo:      it.StockMaximo,
		PrecioCosto:      it.PrecioCosto,
		PrecioVenta:      it.PrecioVenta,
		Activo:           it.Activo,
		StockBajo:        ev.StockBajo,
		EstadoStock:      string(ev.Level),
		MargenPorcentaje: ev.MargenPorcentaje,
		CreatedAt:        it.CreatedAt,
		UpdatedAt:        it.UpdatedAt,
	}
}
