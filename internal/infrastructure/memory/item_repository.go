package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// ItemRepo implementa repository.ItemRepository en memoria.
type ItemRepo struct {
	store *Store
	tx    bool
}

var _ repository.ItemRepository = (*ItemRepo)(nil)

// NewItemRepository repositorio fuera de transacción.
func NewItemRepository(store *Store) *ItemRepo {
	return &ItemRepo{store: store}
}

func copyItem(it *entity.Item) *entity.Item {
	cp := *it
	return &cp
}

func (r *ItemRepo) find(st *state, tenantID, itemID string) (*entity.Item, bool) {
	it, ok := st.items[itemID]
	if !ok || it.IDTenant != tenantID {
		return nil, false
	}
	return it, true
}

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	return r.store.with(ctx, r.tx, func(st *state) error {
		if item.Codigo != nil {
			for _, it := range st.items {
				if it.IDTenant == item.IDTenant && it.Codigo != nil && *it.Codigo == *item.Codigo {
					return fmt.Errorf("%w: código %s", domain.ErrDuplicate, *item.Codigo)
				}
			}
		}
		st.items[item.IDItem] = copyItem(item)
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, tenantID, itemID string) (*entity.Item, error) {
	var out *entity.Item
	err := r.store.with(ctx, r.tx, func(st *state) error {
		if it, ok := r.find(st, tenantID, itemID); ok {
			out = copyItem(it)
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de una tx el mutex del store ya serializa el acceso.
func (r *ItemRepo) GetForUpdate(ctx context.Context, tenantID, itemID string) (*entity.Item, error) {
	return r.GetByID(ctx, tenantID, itemID)
}

func (r *ItemRepo) GetByCodigo(ctx context.Context, tenantID, codigo string) (*entity.Item, error) {
	var out *entity.Item
	err := r.store.with(ctx, r.tx, func(st *state) error {
		for _, it := range st.items {
			if it.IDTenant == tenantID && it.Codigo != nil && *it.Codigo == codigo {
				out = copyItem(it)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update no toca stock_actual.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	return r.store.with(ctx, r.tx, func(st *state) error {
		cur, ok := r.find(st, item.IDTenant, item.IDItem)
		if !ok {
			return fmt.Errorf("%w: item %s", domain.ErrNotFound, item.IDItem)
		}
		cp := copyItem(item)
		cp.StockActual = cur.StockActual
		cp.CreatedAt = cur.CreatedAt
		st.items[item.IDItem] = cp
		return nil
	})
}

func (r *ItemRepo) mutate(ctx context.Context, tenantID, itemID string, fn func(it *entity.Item)) error {
	return r.store.with(ctx, r.tx, func(st *state) error {
		cur, ok := r.find(st, tenantID, itemID)
		if !ok {
			return fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
		}
		cp := copyItem(cur)
		fn(cp)
		st.items[itemID] = cp
		return nil
	})
}

func (r *ItemRepo) UpdateStock(ctx context.Context, tenantID, itemID string, stock decimal.Decimal) error {
	return r.mutate(ctx, tenantID, itemID, func(it *entity.Item) { it.StockActual = stock })
}

func (r *ItemRepo) UpdateCost(ctx context.Context, tenantID, itemID string, cost decimal.Decimal) error {
	return r.mutate(ctx, tenantID, itemID, func(it *entity.Item) { it.PrecioCosto = cost })
}

func (r *ItemRepo) SetActive(ctx context.Context, tenantID, itemID string, activo bool) error {
	return r.mutate(ctx, tenantID, itemID, func(it *entity.Item) { it.Activo = activo })
}

func (r *ItemRepo) collect(st *state, tenantID string, keep func(*entity.Item) bool) []*entity.Item {
	out := make([]*entity.Item, 0)
	for _, it := range st.items {
		if it.IDTenant == tenantID && keep(it) {
			out = append(out, copyItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nombre != out[j].Nombre {
			return out[i].Nombre < out[j].Nombre
		}
		return out[i].IDItem < out[j].IDItem
	})
	return out
}

func (r *ItemRepo) List(ctx context.Context, tenantID string, filter repository.ItemFilter) ([]*entity.Item, error) {
	var out []*entity.Item
	q := strings.ToLower(strings.TrimSpace(filter.Busqueda))
	err := r.store.with(ctx, r.tx, func(st *state) error {
		out = r.collect(st, tenantID, func(it *entity.Item) bool {
			if filter.SoloActivos && !it.Activo {
				return false
			}
			if filter.SoloStockBajo && !it.StockBajo() {
				return false
			}
			if filter.Categoria != "" && (it.Categoria == nil || *it.Categoria != filter.Categoria) {
				return false
			}
			if q != "" {
				hit := strings.Contains(strings.ToLower(it.Nombre), q)
				if !hit && it.Codigo != nil {
					hit = strings.Contains(strings.ToLower(*it.Codigo), q)
				}
				return hit
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if filter.Offset >= len(out) {
		return []*entity.Item{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ItemRepo) ListActive(ctx context.Context, tenantID string) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.store.with(ctx, r.tx, func(st *state) error {
		out = r.collect(st, tenantID, func(it *entity.Item) bool { return it.Activo })
		return nil
	})
	return out, err
}

func (r *ItemRepo) Stats(ctx context.Context, tenantID string) (*repository.StockStats, error) {
	stats := &repository.StockStats{ValorInventario: decimal.Zero}
	err := r.store.with(ctx, r.tx, func(st *state) error {
		cats := map[string]struct{}{}
		for _, it := range st.items {
			if it.IDTenant != tenantID || !it.Activo {
				continue
			}
			stats.TotalItems++
			if it.StockBajo() {
				stats.ItemsStockBajo++
			}
			if inventory.Classify(it.StockActual, it.StockMinimo) == inventory.LevelCritico {
				stats.ItemsCriticos++
			}
			stats.ValorInventario = stats.ValorInventario.Add(it.ValorInventario())
			if it.Categoria != nil && *it.Categoria != "" {
				cats[*it.Categoria] = struct{}{}
			}
		}
		stats.Categorias = len(cats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
