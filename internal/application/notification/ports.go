package notification

import (
	"context"

	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con el repositorio de notificaciones atado a ella.
// El Dedup Gate hace lock -> check -> insert dentro de una sola llamada.
type TxRunner interface {
	RunNotification(ctx context.Context, fn func(repo repository.NotificationRepository) error) error
}
