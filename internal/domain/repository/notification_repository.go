package repository

import (
	"context"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// NotificationRepository puerto del Notification Store.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// GetByID busca sin filtrar por tenant para poder distinguir NotFound de Forbidden.
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, tenantID, userID string, limit int, soloNoLeidas bool) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, tenantID, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, tenantID, userID string) (int, error)
	Delete(ctx context.Context, id string) error
	// HasRecentUnread indica si existe una no leída del tipo creada después de since.
	HasRecentUnread(ctx context.Context, tenantID, userID, tipo string, since time.Time) (bool, error)
	// LockDedupKey serializa emisiones concurrentes de (tenant, usuario, tipo) hasta el fin de la transacción.
	LockDedupKey(ctx context.Context, tenantID, userID, tipo string) error
}

// PreferenceRepository puerto de preferencias de notificación.
type PreferenceRepository interface {
	ListByUser(ctx context.Context, tenantID, userID string) ([]*entity.NotificationPreference, error)
	Upsert(ctx context.Context, pref *entity.NotificationPreference) error
}
