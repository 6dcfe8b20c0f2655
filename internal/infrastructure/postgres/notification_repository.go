package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo Notification Store sobre PostgreSQL.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

const notificationColumns = `id_notificacion, id_tenant, id_usuario, tipo, titulo, mensaje, leida, url_accion, metadata, created_at`

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	var meta []byte
	err := row.Scan(&n.IDNotificacion, &n.IDTenant, &n.IDUsuario, &n.Tipo, &n.Titulo, &n.Mensaje,
		&n.Leida, &n.URLAccion, &meta, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Metadata = meta
	return &n, nil
}

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	var meta any
	if len(n.Metadata) > 0 {
		meta = string(n.Metadata)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO notificaciones (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)`,
		n.IDNotificacion, n.IDTenant, n.IDUsuario, n.Tipo, n.Titulo, n.Mensaje, n.Leida, n.URLAccion, meta, n.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapStoreErr("insert notificación", err)
	}
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	if !validIDs(id) {
		return nil, nil
	}
	n, err := scanNotification(r.q.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notificaciones WHERE id_notificacion = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapStoreErr("get notificación", err)
	}
	return n, nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, tenantID, userID string, limit int, soloNoLeidas bool) ([]*entity.Notification, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notificaciones
		WHERE id_tenant = $1 AND id_usuario = $2 AND ($3 = FALSE OR leida = FALSE)
		ORDER BY created_at DESC, id_notificacion
		LIMIT $4`, tenantID, userID, soloNoLeidas, limit)
	if err != nil {
		return nil, wrapStoreErr("list notificaciones", err)
	}
	defer rows.Close()

	out := make([]*entity.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notificación: %w", err)
		}
		out = append(out, n)
	}
	return out, wrapStoreErr("list notificaciones", rows.Err())
}

func (r *NotificationRepo) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM notificaciones WHERE id_tenant = $1 AND id_usuario = $2 AND leida = FALSE`,
		tenantID, userID).Scan(&n)
	if err != nil {
		return 0, wrapStoreErr("count no leídas", err)
	}
	return n, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE notificaciones SET leida = TRUE WHERE id_notificacion = $1`, id)
	return wrapStoreErr("marcar leída", err)
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, tenantID, userID string) (int, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE notificaciones SET leida = TRUE WHERE id_tenant = $1 AND id_usuario = $2 AND leida = FALSE`,
		tenantID, userID)
	if err != nil {
		return 0, wrapStoreErr("marcar todas leídas", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM notificaciones WHERE id_notificacion = $1`, id)
	return wrapStoreErr("eliminar notificación", err)
}

func (r *NotificationRepo) HasRecentUnread(ctx context.Context, tenantID, userID, tipo string, since time.Time) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notificaciones
			WHERE id_tenant = $1 AND id_usuario = $2 AND tipo = $3 AND leida = FALSE AND created_at > $4
		)`, tenantID, userID, tipo, since).Scan(&exists)
	if err != nil {
		return false, wrapStoreErr("dedup check", err)
	}
	return exists, nil
}

// LockDedupKey advisory lock de transacción sobre (tenant, usuario, tipo). Se libera en commit/rollback.
func (r *NotificationRepo) LockDedupKey(ctx context.Context, tenantID, userID, tipo string) error {
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tenantID+"|"+userID+"|"+tipo)
	return wrapStoreErr("dedup lock", err)
}

var _ repository.PreferenceRepository = (*PreferenceRepo)(nil)

// PreferenceRepo preferencias de notificación sobre PostgreSQL.
type PreferenceRepo struct {
	q Querier
}

// NewPreferenceRepository construye el adaptador.
func NewPreferenceRepository(q Querier) *PreferenceRepo {
	return &PreferenceRepo{q: q}
}

func (r *PreferenceRepo) ListByUser(ctx context.Context, tenantID, userID string) ([]*entity.NotificationPreference, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id_tenant, id_usuario, tipo_notificacion, habilitada, frecuencia, updated_at
		FROM preferencias_notificacion
		WHERE id_tenant = $1 AND id_usuario = $2
		ORDER BY tipo_notificacion`, tenantID, userID)
	if err != nil {
		return nil, wrapStoreErr("list preferencias", err)
	}
	defer rows.Close()

	out := make([]*entity.NotificationPreference, 0)
	for rows.Next() {
		var p entity.NotificationPreference
		if err := rows.Scan(&p.IDTenant, &p.IDUsuario, &p.TipoNotificacion, &p.Habilitada, &p.Frecuencia, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan preferencia: %w", err)
		}
		out = append(out, &p)
	}
	return out, wrapStoreErr("list preferencias", rows.Err())
}

func (r *PreferenceRepo) Upsert(ctx context.Context, p *entity.NotificationPreference) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO preferencias_notificacion (id_tenant, id_usuario, tipo_notificacion, habilitada, frecuencia, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id_tenant, id_usuario, tipo_notificacion)
		DO UPDATE SET habilitada = EXCLUDED.habilitada, frecuencia = EXCLUDED.frecuencia, updated_at = EXCLUDED.updated_at`,
		p.IDTenant, p.IDUsuario, p.TipoNotificacion, p.Habilitada, p.Frecuencia, p.UpdatedAt)
	return wrapStoreErr("upsert preferencia", err)
}
