package repository

import (
	"context"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// PlantRepository lectura de plantas para el escaneo de salud.
type PlantRepository interface {
	// ListSickWithoutCheckup plantas en estado enferma sin entrada de historial clínico desde since.
	ListSickWithoutCheckup(ctx context.Context, tenantID string, since time.Time) ([]*entity.Plant, error)
}
