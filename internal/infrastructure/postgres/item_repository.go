package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id_item, id_tenant, codigo, nombre, categoria, unidad_medida, stock_actual, stock_minimo,
	stock_maximo, precio_costo, precio_venta, activo, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.IDItem, &it.IDTenant, &it.Codigo, &it.Nombre, &it.Categoria, &it.UnidadMedida,
		&it.StockActual, &it.StockMinimo, &it.StockMaximo, &it.PrecioCosto, &it.PrecioVenta,
		&it.Activo, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapStoreErr(op, err)
	}
	return it, nil
}

// Create persiste un nuevo item.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO inventario_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		item.IDItem, item.IDTenant, item.Codigo, item.Nombre, item.Categoria, item.UnidadMedida,
		item.StockActual, item.StockMinimo, item.StockMaximo, item.PrecioCosto, item.PrecioVenta,
		item.Activo, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapStoreErr("insert item", err)
	}
	return nil
}

// GetByID obtiene un item del tenant. nil si no existe o es de otro tenant.
func (r *ItemRepo) GetByID(ctx context.Context, tenantID, itemID string) (*entity.Item, error) {
	if !validIDs(tenantID, itemID) {
		return nil, nil
	}
	return r.getOne(ctx, "get item",
		`SELECT `+itemColumns+` FROM inventario_items WHERE id_tenant = $1 AND id_item = $2`, tenantID, itemID)
}

// GetForUpdate obtiene el item con bloqueo de fila (solo válido dentro de una transacción).
func (r *ItemRepo) GetForUpdate(ctx context.Context, tenantID, itemID string) (*entity.Item, error) {
	if !validIDs(tenantID, itemID) {
		return nil, nil
	}
	return r.getOne(ctx, "get item for update",
		`SELECT `+itemColumns+` FROM inventario_items WHERE id_tenant = $1 AND id_item = $2 FOR UPDATE`, tenantID, itemID)
}

// GetByCodigo obtiene un item por tenant y código.
func (r *ItemRepo) GetByCodigo(ctx context.Context, tenantID, codigo string) (*entity.Item, error) {
	return r.getOne(ctx, "get item by codigo",
		`SELECT `+itemColumns+` FROM inventario_items WHERE id_tenant = $1 AND codigo = $2`, tenantID, codigo)
}

// Update actualiza datos descriptivos, umbrales y precios. stock_actual queda fuera.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE inventario_items
		SET codigo = $3, nombre = $4, categoria = $5, unidad_medida = $6, stock_minimo = $7,
		    stock_maximo = $8, precio_costo = $9, precio_venta = $10, updated_at = $11
		WHERE id_tenant = $1 AND id_item = $2`
	tag, err := r.q.Exec(ctx, query,
		item.IDTenant, item.IDItem, item.Codigo, item.Nombre, item.Categoria, item.UnidadMedida,
		item.StockMinimo, item.StockMaximo, item.PrecioCosto, item.PrecioVenta, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapStoreErr("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return wrapStoreErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock escribe la caché stock_actual. Solo lo llama el procesador de movimientos.
func (r *ItemRepo) UpdateStock(ctx context.Context, tenantID, itemID string, stock decimal.Decimal) error {
	return r.execOne(ctx, "update stock",
		`UPDATE inventario_items SET stock_actual = $3, updated_at = now() WHERE id_tenant = $1 AND id_item = $2`,
		tenantID, itemID, stock)
}

// UpdateCost actualiza precio_costo (costo promedio ponderado).
func (r *ItemRepo) UpdateCost(ctx context.Context, tenantID, itemID string, cost decimal.Decimal) error {
	return r.execOne(ctx, "update cost",
		`UPDATE inventario_items SET precio_costo = $3, updated_at = now() WHERE id_tenant = $1 AND id_item = $2`,
		tenantID, itemID, cost)
}

// SetActive soft enable/disable.
func (r *ItemRepo) SetActive(ctx context.Context, tenantID, itemID string, activo bool) error {
	return r.execOne(ctx, "set active",
		`UPDATE inventario_items SET activo = $3, updated_at = now() WHERE id_tenant = $1 AND id_item = $2`,
		tenantID, itemID, activo)
}

func (r *ItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("list items", err)
	}
	defer rows.Close()

	out := make([]*entity.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, wrapStoreErr("list items", rows.Err())
}

// List items del tenant con filtros opcionales, ordenados por nombre.
func (r *ItemRepo) List(ctx context.Context, tenantID string, filter repository.ItemFilter) ([]*entity.Item, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + itemColumns + ` FROM inventario_items WHERE id_tenant = $1`)
	args := []any{tenantID}
	if filter.SoloActivos {
		sb.WriteString(` AND activo = TRUE`)
	}
	if filter.SoloStockBajo {
		sb.WriteString(` AND stock_actual <= stock_minimo`)
	}
	if filter.Categoria != "" {
		args = append(args, filter.Categoria)
		fmt.Fprintf(&sb, ` AND categoria = $%d`, len(args))
	}
	if q := strings.TrimSpace(filter.Busqueda); q != "" {
		args = append(args, "%"+q+"%")
		fmt.Fprintf(&sb, ` AND (nombre ILIKE $%d OR codigo ILIKE $%d)`, len(args), len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&sb, ` ORDER BY nombre, id_item LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return r.list(ctx, sb.String(), args...)
}

// ListActive todos los items activos del tenant (escaneo del generador y reposición).
func (r *ItemRepo) ListActive(ctx context.Context, tenantID string) ([]*entity.Item, error) {
	return r.list(ctx,
		`SELECT `+itemColumns+` FROM inventario_items WHERE id_tenant = $1 AND activo = TRUE ORDER BY nombre, id_item`,
		tenantID)
}

// Stats agregados sobre items activos. Crítico: stock_actual <= 0.
func (r *ItemRepo) Stats(ctx context.Context, tenantID string) (*repository.StockStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE stock_actual <= stock_minimo),
			COUNT(*) FILTER (WHERE stock_actual <= 0),
			COALESCE(SUM(stock_actual * precio_costo), 0),
			COUNT(DISTINCT NULLIF(categoria, ''))
		FROM inventario_items
		WHERE id_tenant = $1 AND activo = TRUE`
	var s repository.StockStats
	err := r.q.QueryRow(ctx, query, tenantID).Scan(
		&s.TotalItems, &s.ItemsStockBajo, &s.ItemsCriticos, &s.ValorInventario, &s.Categorias,
	)
	if err != nil {
		return nil, wrapStoreErr("stock stats", err)
	}
	return &s, nil
}
