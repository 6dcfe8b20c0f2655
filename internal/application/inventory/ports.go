package inventory

import (
	"context"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: movimiento y stock_actual se escriben juntos o no se escriben.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// ConsumptionPDFGenerator genera la vista de auditoría de materiales consumidos por tarea.
type ConsumptionPDFGenerator interface {
	GenerateConsumptionPDF(ctx context.Context, summary *dto.ConsumptionSummaryResponse) ([]byte, error)
}
