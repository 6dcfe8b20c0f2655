package repository

import (
	"context"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// MovementRepository puerto del ledger append-only. No hay Update ni Delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// ListByItem devuelve el historial de un item, más reciente primero.
	ListByItem(ctx context.Context, tenantID, itemID string, limit, offset int) ([]*entity.Movement, error)
	// ListByTask devuelve los movimientos ligados a una tarea ordenados por fecha ascendente.
	ListByTask(ctx context.Context, tenantID, taskID string) ([]*entity.Movement, error)
}
