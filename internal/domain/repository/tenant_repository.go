package repository

import (
	"context"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// TenantRepository lista los tenants a procesar por el generador.
type TenantRepository interface {
	ListActive(ctx context.Context) ([]*entity.Tenant, error)
}
