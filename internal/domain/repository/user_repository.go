package repository

import (
	"context"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// UserRepository destinatarios de notificaciones por tenant.
type UserRepository interface {
	ListActiveByTenant(ctx context.Context, tenantID string) ([]*entity.User, error)
	// GetActiveUser nil si el usuario no existe en el tenant o está inactivo.
	GetActiveUser(ctx context.Context, tenantID, userID string) (*entity.User, error)
}
