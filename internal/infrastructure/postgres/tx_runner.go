package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/application/notification"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner    = (*TxRunner)(nil)
	_ notification.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapStoreErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStoreErr("commit transaction", err)
	}
	return nil
}

// Run inicia una transacción, ejecuta fn con repos de item y movimiento atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewItemRepository(q), NewMovementRepository(q))
	})
}

// RunNotification transacción para el Dedup Gate (advisory lock + check + insert).
func (r *TxRunner) RunNotification(ctx context.Context, fn func(repo repository.NotificationRepository) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewNotificationRepository(q))
	})
}
