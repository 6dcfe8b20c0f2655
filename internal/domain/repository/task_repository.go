package repository

import (
	"context"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// TaskRepository lectura de tareas para el linker de materiales y el generador.
type TaskRepository interface {
	GetByID(ctx context.Context, tenantID, taskID string) (*entity.Task, error)
	// ListOverdue tareas no completadas con fecha_programada anterior a today.
	ListOverdue(ctx context.Context, tenantID string, today time.Time) ([]*entity.Task, error)
	// ListDueOn tareas no completadas programadas exactamente en day.
	ListDueOn(ctx context.Context, tenantID string, day time.Time) ([]*entity.Task, error)
}
