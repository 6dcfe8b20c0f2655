package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

var (
	_ repository.TenantRepository = (*DirectoryRepo)(nil)
	_ repository.UserRepository   = (*DirectoryRepo)(nil)
	_ repository.TaskRepository   = (*DirectoryRepo)(nil)
	_ repository.PlantRepository  = (*DirectoryRepo)(nil)
)

// DirectoryRepo lecturas de tenants, usuarios, tareas y plantas (tablas de otros módulos).
type DirectoryRepo struct {
	q Querier
}

// NewDirectoryRepository construye el adaptador.
func NewDirectoryRepository(q Querier) *DirectoryRepo {
	return &DirectoryRepo{q: q}
}

func (r *DirectoryRepo) ListActive(ctx context.Context) ([]*entity.Tenant, error) {
	rows, err := r.q.Query(ctx, `SELECT id_tenant, nombre, activo FROM tenants WHERE activo = TRUE ORDER BY id_tenant`)
	if err != nil {
		return nil, wrapStoreErr("list tenants", err)
	}
	defer rows.Close()
	out := make([]*entity.Tenant, 0)
	for rows.Next() {
		var t entity.Tenant
		if err := rows.Scan(&t.IDTenant, &t.Nombre, &t.Activo); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, &t)
	}
	return out, wrapStoreErr("list tenants", rows.Err())
}

func (r *DirectoryRepo) ListActiveByTenant(ctx context.Context, tenantID string) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id_usuario, id_tenant, nombre, activo
		FROM usuarios WHERE id_tenant = $1 AND activo = TRUE ORDER BY id_usuario`, tenantID)
	if err != nil {
		return nil, wrapStoreErr("list usuarios", err)
	}
	defer rows.Close()
	out := make([]*entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.IDUsuario, &u.IDTenant, &u.Nombre, &u.Activo); err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		out = append(out, &u)
	}
	return out, wrapStoreErr("list usuarios", rows.Err())
}

func (r *DirectoryRepo) GetActiveUser(ctx context.Context, tenantID, userID string) (*entity.User, error) {
	if !validIDs(tenantID, userID) {
		return nil, nil
	}
	var u entity.User
	err := r.q.QueryRow(ctx, `
		SELECT id_usuario, id_tenant, nombre, activo
		FROM usuarios WHERE id_tenant = $1 AND id_usuario = $2 AND activo = TRUE`, tenantID, userID).
		Scan(&u.IDUsuario, &u.IDTenant, &u.Nombre, &u.Activo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr("get usuario", err)
	}
	return &u, nil
}

const taskColumns = `id_tarea, id_tenant, titulo, fecha_programada, completada, id_usuario_asignado`

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	if err := row.Scan(&t.IDTarea, &t.IDTenant, &t.Titulo, &t.FechaProgramada, &t.Completada, &t.IDUsuarioAsignado); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *DirectoryRepo) GetByID(ctx context.Context, tenantID, taskID string) (*entity.Task, error) {
	if !validIDs(tenantID, taskID) {
		return nil, nil
	}
	t, err := scanTask(r.q.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tareas WHERE id_tenant = $1 AND id_tarea = $2`, tenantID, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapStoreErr("get tarea", err)
	}
	return t, nil
}

func (r *DirectoryRepo) listTasks(ctx context.Context, query string, args ...any) ([]*entity.Task, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("list tareas", err)
	}
	defer rows.Close()
	out := make([]*entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tarea: %w", err)
		}
		out = append(out, t)
	}
	return out, wrapStoreErr("list tareas", rows.Err())
}

func (r *DirectoryRepo) ListOverdue(ctx context.Context, tenantID string, today time.Time) ([]*entity.Task, error) {
	return r.listTasks(ctx, `
		SELECT `+taskColumns+` FROM tareas
		WHERE id_tenant = $1 AND completada = FALSE AND fecha_programada < $2::date
		ORDER BY fecha_programada, id_tarea`, tenantID, today.Format(time.DateOnly))
}

func (r *DirectoryRepo) ListDueOn(ctx context.Context, tenantID string, day time.Time) ([]*entity.Task, error) {
	return r.listTasks(ctx, `
		SELECT `+taskColumns+` FROM tareas
		WHERE id_tenant = $1 AND completada = FALSE AND fecha_programada = $2::date
		ORDER BY id_tarea`, tenantID, day.Format(time.DateOnly))
}

func (r *DirectoryRepo) ListSickWithoutCheckup(ctx context.Context, tenantID string, since time.Time) ([]*entity.Plant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id_planta, p.id_tenant, p.nombre, p.estado
		FROM plantas p
		WHERE p.id_tenant = $1 AND p.estado = $2
		  AND NOT EXISTS (
			SELECT 1 FROM historial_clinico h WHERE h.id_planta = p.id_planta AND h.fecha >= $3
		  )
		ORDER BY p.nombre`, tenantID, entity.PlantaEnferma, since)
	if err != nil {
		return nil, wrapStoreErr("list plantas enfermas", err)
	}
	defer rows.Close()
	out := make([]*entity.Plant, 0)
	for rows.Next() {
		var p entity.Plant
		if err := rows.Scan(&p.IDPlanta, &p.IDTenant, &p.Nombre, &p.Estado); err != nil {
			return nil, fmt.Errorf("scan planta: %w", err)
		}
		out = append(out, &p)
	}
	return out, wrapStoreErr("list plantas enfermas", rows.Err())
}
