package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// NotificationRepo implementa repository.NotificationRepository en memoria.
type NotificationRepo struct {
	store *Store
	tx    bool
}

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NewNotificationRepository repositorio fuera de transacción.
func NewNotificationRepository(store *Store) *NotificationRepo {
	return &NotificationRepo{store: store}
}

func copyNotification(n *entity.Notification) *entity.Notification {
	cp := *n
	cp.Metadata = append([]byte(nil), n.Metadata...)
	return &cp
}

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	return r.store.with(ctx, r.tx, func(st *state) error {
		if _, ok := st.notifications[n.IDNotificacion]; ok {
			return fmt.Errorf("%w: notificación %s", domain.ErrDuplicate, n.IDNotificacion)
		}
		st.notifications[n.IDNotificacion] = copyNotification(n)
		return nil
	})
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	var out *entity.Notification
	err := r.store.with(ctx, r.tx, func(st *state) error {
		if n, ok := st.notifications[id]; ok {
			out = copyNotification(n)
		}
		return nil
	})
	return out, err
}

func (r *NotificationRepo) ListByUser(ctx context.Context, tenantID, userID string, limit int, soloNoLeidas bool) ([]*entity.Notification, error) {
	out := make([]*entity.Notification, 0)
	err := r.store.with(ctx, r.tx, func(st *state) error {
		for _, n := range st.notifications {
			if n.IDTenant != tenantID || n.IDUsuario != userID || (soloNoLeidas && n.Leida) {
				continue
			}
			out = append(out, copyNotification(n))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].IDNotificacion < out[j].IDNotificacion
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	count := 0
	err := r.store.with(ctx, r.tx, func(st *state) error {
		for _, n := range st.notifications {
			if n.IDTenant == tenantID && n.IDUsuario == userID && !n.Leida {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	return r.store.with(ctx, r.tx, func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return nil
		}
		cp := copyNotification(n)
		cp.Leida = true
		st.notifications[id] = cp
		return nil
	})
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, tenantID, userID string) (int, error) {
	changed := 0
	err := r.store.with(ctx, r.tx, func(st *state) error {
		for id, n := range st.notifications {
			if n.IDTenant == tenantID && n.IDUsuario == userID && !n.Leida {
				cp := copyNotification(n)
				cp.Leida = true
				st.notifications[id] = cp
				changed++
			}
		}
		return nil
	})
	return changed, err
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	return r.store.with(ctx, r.tx, func(st *state) error {
		delete(st.notifications, id)
		return nil
	})
}

func (r *NotificationRepo) HasRecentUnread(ctx context.Context, tenantID, userID, tipo string, since time.Time) (bool, error) {
	found := false
	err := r.store.with(ctx, r.tx, func(st *state) error {
		for _, n := range st.notifications {
			if n.IDTenant == tenantID && n.IDUsuario == userID && n.Tipo == tipo && !n.Leida && n.CreatedAt.After(since) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// LockDedupKey no-op: las tx en memoria ya son serializables.
func (r *NotificationRepo) LockDedupKey(ctx context.Context, tenantID, userID, tipo string) error {
	return ctx.Err()
}

// PreferenceRepo implementa repository.PreferenceRepository en memoria.
type PreferenceRepo struct {
	store *Store
}

var _ repository.PreferenceRepository = (*PreferenceRepo)(nil)

// NewPreferenceRepository construye el repositorio.
func NewPreferenceRepository(store *Store) *PreferenceRepo {
	return &PreferenceRepo{store: store}
}

func (r *PreferenceRepo) ListByUser(ctx context.Context, tenantID, userID string) ([]*entity.NotificationPreference, error) {
	out := make([]*entity.NotificationPreference, 0)
	err := r.store.with(ctx, false, func(st *state) error {
		for k, p := range st.prefs {
			if k.tenant == tenantID && k.user == userID {
				cp := *p
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TipoNotificacion < out[j].TipoNotificacion })
	return out, err
}

func (r *PreferenceRepo) Upsert(ctx context.Context, p *entity.NotificationPreference) error {
	return r.store.with(ctx, false, func(st *state) error {
		cp := *p
		st.prefs[prefKey{p.IDTenant, p.IDUsuario, p.TipoNotificacion}] = &cp
		return nil
	})
}
