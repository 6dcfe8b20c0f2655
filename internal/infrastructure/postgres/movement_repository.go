package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger append-only sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id_movimiento, id_tenant, id_item, tipo, cantidad, precio_unitario, motivo, referencia,
	id_proveedor, notas, stock_anterior, stock_nuevo, fecha, id_usuario, id_tarea`

// orden es una identidad de inserción: desempata movimientos con la misma fecha.
const listByTaskQuery = `
	SELECT ` + movementColumns + `
	FROM inventario_movimientos
	WHERE id_tenant = $1 AND id_tarea = $2
	ORDER BY fecha ASC, orden ASC`

// Create inserta una fila del ledger.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO inventario_movimientos (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.IDMovimiento, m.IDTenant, m.IDItem, m.Tipo, m.Cantidad, m.PrecioUnitario, m.Motivo, m.Referencia,
		m.IDProveedor, m.Notas, m.StockAnterior, m.StockNuevo, m.Fecha, m.IDUsuario, m.IDTarea,
	)
	if err != nil {
		return wrapStoreErr("insert movimiento", err)
	}
	return nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("list movimientos", err)
	}
	defer rows.Close()

	out := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		out = append(out, m)
	}
	return out, wrapStoreErr("list movimientos", rows.Err())
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.IDMovimiento, &m.IDTenant, &m.IDItem, &m.Tipo, &m.Cantidad, &m.PrecioUnitario, &m.Motivo, &m.Referencia,
		&m.IDProveedor, &m.Notas, &m.StockAnterior, &m.StockNuevo, &m.Fecha, &m.IDUsuario, &m.IDTarea,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByItem historial del item, más reciente primero.
func (r *MovementRepo) ListByItem(ctx context.Context, tenantID, itemID string, limit, offset int) ([]*entity.Movement, error) {
	if !validIDs(tenantID, itemID) {
		return []*entity.Movement{}, nil
	}
	return r.list(ctx, `
		SELECT `+movementColumns+`
		FROM inventario_movimientos
		WHERE id_tenant = $1 AND id_item = $2
		ORDER BY fecha DESC, orden DESC
		LIMIT $3 OFFSET $4`, tenantID, itemID, limit, offset)
}

// ListByTask movimientos ligados a la tarea en orden cronológico. Las líneas de un mismo lote
// comparten fecha y salen en el orden en que se insertaron.
func (r *MovementRepo) ListByTask(ctx context.Context, tenantID, taskID string) ([]*entity.Movement, error) {
	if !validIDs(tenantID, taskID) {
		return []*entity.Movement{}, nil
	}
	return r.list(ctx, listByTaskQuery, tenantID, taskID)
}
