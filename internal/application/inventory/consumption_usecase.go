package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

const motivoConsumoTarea = "consumo de tarea"

// ConsumptionLine una línea de material consumido por una tarea.
type ConsumptionLine struct {
	ItemID   string
	Cantidad decimal.Decimal
	Motivo   string
}

// ConsumptionUseCase vincula lotes de salidas con la tarea que las originó.
// Un lote se aplica completo o no se aplica.
type ConsumptionUseCase struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
	movRepo  repository.MovementRepository
	taskRepo repository.TaskRepository
	pdf      ConsumptionPDFGenerator
	policy   Policy
	log      zerolog.Logger
	now      func() time.Time
}

// NewConsumptionUseCase construye el caso de uso. pdf puede ser nil si no se expone el reporte.
func NewConsumptionUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	taskRepo repository.TaskRepository,
	pdf ConsumptionPDFGenerator,
	policy Policy,
	log zerolog.Logger,
) *ConsumptionUseCase {
	return &ConsumptionUseCase{
		txRunner: txRunner,
		itemRepo: itemRepo,
		movRepo:  movRepo,
		taskRepo: taskRepo,
		pdf:      pdf,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ConsumptionUseCase) WithClock(now func() time.Time) *ConsumptionUseCase {
	uc.now = now
	return uc
}

func (uc *ConsumptionUseCase) requireTask(ctx context.Context, tenantID, taskID string) (*entity.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: id_tarea requerido", domain.ErrValidation)
	}
	task, err := uc.taskRepo.GetByID(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: tarea %s", domain.ErrNotFound, taskID)
	}
	return task, nil
}

// RegisterConsumption valida todas las líneas y luego las aplica como salidas ligadas a la tarea,
// en una sola transacción. Cualquier falla deja la tarea sin movimientos nuevos.
func (uc *ConsumptionUseCase) RegisterConsumption(
	ctx context.Context,
	tenantID, userID, taskID string,
	lines []ConsumptionLine,
) ([]*entity.Movement, error) {
	if tenantID == "" || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: el lote no tiene líneas", domain.ErrValidation)
	}
	requested := make(map[string]decimal.Decimal, len(lines))
	for i, l := range lines {
		if l.ItemID == "" {
			return nil, fmt.Errorf("%w: línea %d sin id_item", domain.ErrValidation, i+1)
		}
		if err := inventory.Salida.ValidateQuantity(l.Cantidad); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		requested[l.ItemID] = requested[l.ItemID].Add(l.Cantidad)
	}
	task, err := uc.requireTask(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}

	// Orden ascendente de ids al bloquear: dos lotes con items en común no se bloquean mutuamente.
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := uc.now()
	var movements []*entity.Movement
	err = uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, movRepo repository.MovementRepository) error {
		locked := make(map[string]*entity.Item, len(ids))
		for _, id := range ids {
			item, err := lockItem(ctx, itemRepo, tenantID, id)
			if err != nil {
				return err
			}
			if err := inventory.Salida.CheckAvailability(item.StockActual, requested[id], uc.policy.AllowNegativeStock); err != nil {
				return fmt.Errorf("item %s: %w", item.Nombre, err)
			}
			locked[id] = item
		}

		movements = make([]*entity.Movement, 0, len(lines))
		for _, l := range lines {
			motivo := l.Motivo
			if motivo == "" {
				motivo = motivoConsumoTarea
			}
			in := MovementInput{
				TenantID:   tenantID,
				UserID:     userID,
				ItemID:     l.ItemID,
				Tipo:       entity.MovimientoSalida,
				Cantidad:   l.Cantidad,
				Motivo:     motivo,
				Referencia: task.Titulo,
				IDTarea:    &task.IDTarea,
			}
			mov, err := applyLocked(ctx, itemRepo, movRepo, locked[l.ItemID], inventory.Salida, in, uc.policy, now)
			if err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("tenant", tenantID).Str("tarea", taskID).Msg("consumo de materiales rechazado")
		return nil, err
	}
	uc.log.Info().Str("tenant", tenantID).Str("tarea", taskID).Int("lineas", len(movements)).Msg("consumo de materiales registrado")
	return movements, nil
}

// ListConsumptionByTask movimientos de la tarea ordenados por fecha ascendente.
func (uc *ConsumptionUseCase) ListConsumptionByTask(ctx context.Context, tenantID, taskID string) ([]*entity.Movement, error) {
	if _, err := uc.requireTask(ctx, tenantID, taskID); err != nil {
		return nil, err
	}
	return uc.movRepo.ListByTask(ctx, tenantID, taskID)
}

// ConsumptionSummary agrega los movimientos de la tarea por item, valorizados a precio_costo actual.
func (uc *ConsumptionUseCase) ConsumptionSummary(ctx context.Context, tenantID, taskID string) (*dto.ConsumptionSummaryResponse, error) {
	task, err := uc.requireTask(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movRepo.ListByTask(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}

	out := &dto.ConsumptionSummaryResponse{
		IDTarea:     task.IDTarea,
		Titulo:      task.Titulo,
		Movimientos: make([]dto.MovementResponse, 0, len(movs)),
		Items:       []dto.ConsumptionItemDTO{},
		CostoTotal:  decimal.Zero,
	}
	index := make(map[string]int)
	for _, m := range movs {
		out.Movimientos = append(out.Movimientos, dto.NewMovementResponse(m))
		// Las salidas restan stock: el consumo neto es -delta.
		consumed := m.Delta().Neg()
		pos, ok := index[m.IDItem]
		if !ok {
			line := dto.ConsumptionItemDTO{IDItem: m.IDItem, Cantidad: decimal.Zero, Costo: decimal.Zero}
			item, err := uc.itemRepo.GetByID(ctx, tenantID, m.IDItem)
			if err != nil {
				return nil, err
			}
			if item != nil {
				line.Nombre = item.Nombre
				line.UnidadMedida = item.UnidadMedida
				line.PrecioCosto = item.PrecioCosto
			}
			out.Items = append(out.Items, line)
			pos = len(out.Items) - 1
			index[m.IDItem] = pos
		}
		line := &out.Items[pos]
		line.Cantidad = line.Cantidad.Add(consumed)
		line.Costo = line.Cantidad.Mul(line.PrecioCosto).Round(2)
	}
	for _, l := range out.Items {
		out.CostoTotal = out.CostoTotal.Add(l.Costo)
	}
	return out, nil
}

// ConsumptionPDF genera el reporte PDF del consumo de la tarea.
func (uc *ConsumptionUseCase) ConsumptionPDF(ctx context.Context, tenantID, taskID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generador PDF no configurado")
	}
	summary, err := uc.ConsumptionSummary(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateConsumptionPDF(ctx, summary)
}
