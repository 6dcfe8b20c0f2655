package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// RegisterMovementUseCase es el procesador de movimientos del ledger: valida, bloquea la
// fila del item (SELECT FOR UPDATE), calcula los snapshots y hace Commit o Rollback.
// No emite notificaciones; eso lo hace el generador en su propio ciclo.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
	taskRepo repository.TaskRepository
	policy   Policy
	log      zerolog.Logger
	now      func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	taskRepo repository.TaskRepository,
	policy Policy,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		movRepo:  movRepo,
		taskRepo: taskRepo,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *RegisterMovementUseCase) WithClock(now func() time.Time) *RegisterMovementUseCase {
	uc.now = now
	return uc
}

// MovementInput entrada de ApplyMovement. TenantID y UserID vienen de la identidad resuelta.
type MovementInput struct {
	TenantID       string
	UserID         string
	ItemID         string
	Tipo           string
	Cantidad       decimal.Decimal
	PrecioUnitario *decimal.Decimal
	Motivo         string
	Referencia     string
	IDProveedor    *string
	Notas          string
	IDTarea        *string
}

func (in MovementInput) validate() (inventory.MovementType, error) {
	if in.TenantID == "" || in.UserID == "" {
		return 0, domain.ErrUnauthorized
	}
	if in.ItemID == "" {
		return 0, fmt.Errorf("%w: id_item requerido", domain.ErrValidation)
	}
	mt, err := inventory.ParseMovementType(in.Tipo)
	if err != nil {
		return 0, err
	}
	if err := mt.ValidateQuantity(in.Cantidad); err != nil {
		return 0, err
	}
	if !nonNegative(in.PrecioUnitario) {
		return 0, fmt.Errorf("%w: precio_unitario negativo", domain.ErrValidation)
	}
	if in.IDProveedor != nil && mt != inventory.Entrada {
		return 0, fmt.Errorf("%w: id_proveedor solo aplica a entradas", domain.ErrValidation)
	}
	return mt, nil
}

// ApplyMovement registra un movimiento entrada/salida/ajuste y devuelve la fila del ledger.
// Dos salidas concurrentes sobre el mismo item se serializan por el bloqueo de fila.
func (uc *RegisterMovementUseCase) ApplyMovement(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	mt, err := in.validate()
	if err != nil {
		return nil, err
	}
	if in.IDTarea != nil {
		task, err := uc.taskRepo.GetByID(ctx, in.TenantID, *in.IDTarea)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, fmt.Errorf("%w: tarea %s", domain.ErrNotFound, *in.IDTarea)
		}
	}

	now := uc.now()
	var mov *entity.Movement
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, movRepo repository.MovementRepository) error {
		item, err := lockItem(ctx, itemRepo, in.TenantID, in.ItemID)
		if err != nil {
			return err
		}
		mov, err = applyLocked(ctx, itemRepo, movRepo, item, mt, in, uc.policy, now)
		return err
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("tenant", in.TenantID).Str("item", in.ItemID).Str("tipo", in.Tipo).Msg("movimiento rechazado")
		return nil, err
	}
	uc.log.Debug().
		Str("tenant", in.TenantID).
		Str("item", in.ItemID).
		Str("tipo", mov.Tipo).
		Str("stock_anterior", mov.StockAnterior.String()).
		Str("stock_nuevo", mov.StockNuevo.String()).
		Msg("movimiento aplicado")
	return mov, nil
}

// ListMovements historial del ledger de un item (más reciente primero).
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, tenantID, itemID string, limit, offset int) ([]*entity.Movement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movRepo.ListByItem(ctx, tenantID, itemID, limit, offset)
}
