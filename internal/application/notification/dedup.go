package notification

import (
	"context"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

const weeklyWindow = 7 * 24 * time.Hour

// DedupGate decide si una notificación candidata debe crearse.
// Regla: se suprime si existe una no leída del mismo tipo para (tenant, usuario) dentro de la ventana.
type DedupGate struct {
	tx     TxRunner
	window time.Duration
	now    func() time.Time
}

// NewDedupGate construye el gate con la ventana base (inmediata/diaria).
func NewDedupGate(tx TxRunner, window time.Duration) *DedupGate {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &DedupGate{tx: tx, window: window, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (g *DedupGate) WithClock(now func() time.Time) *DedupGate {
	g.now = now
	return g
}

// WindowFor traduce la preferencia del usuario a una ventana. ok=false: no emitir nunca.
// Sin preferencia guardada rige el valor por defecto (habilitada, inmediata).
func (g *DedupGate) WindowFor(pref *entity.NotificationPreference) (time.Duration, bool) {
	if pref == nil {
		return g.window, true
	}
	if !pref.Enabled() {
		return 0, false
	}
	if pref.Frecuencia == entity.FrecuenciaSemanal {
		return weeklyWindow, true
	}
	return g.window, true
}

// ShouldEmit false si hay una no leída del tipo creada en (now - window, now].
func (g *DedupGate) ShouldEmit(ctx context.Context, repo repository.NotificationRepository, tenantID, userID, tipo string, window time.Duration) (bool, error) {
	since := g.now().Add(-window)
	exists, err := repo.HasRecentUnread(ctx, tenantID, userID, tipo, since)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// EmitIfAbsent bloquea la clave (tenant, usuario, tipo), verifica la ventana e inserta, todo en una tx.
// Devuelve true si la notificación se creó.
func (g *DedupGate) EmitIfAbsent(ctx context.Context, n *entity.Notification, window time.Duration) (bool, error) {
	created := false
	err := g.tx.RunNotification(ctx, func(repo repository.NotificationRepository) error {
		if err := repo.LockDedupKey(ctx, n.IDTenant, n.IDUsuario, n.Tipo); err != nil {
			return err
		}
		ok, err := g.ShouldEmit(ctx, repo, n.IDTenant, n.IDUsuario, n.Tipo, window)
		if err != nil || !ok {
			return err
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = g.now()
		}
		if err := repo.Create(ctx, n); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
