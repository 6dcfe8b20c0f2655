package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// DirectoryRepo tenants, usuarios, tareas y plantas: datos que este servicio solo lee.
type DirectoryRepo struct {
	store *Store
}

var (
	_ repository.TenantRepository = (*DirectoryRepo)(nil)
	_ repository.UserRepository   = (*DirectoryRepo)(nil)
	_ repository.TaskRepository   = (*DirectoryRepo)(nil)
	_ repository.PlantRepository  = (*DirectoryRepo)(nil)
)

// NewDirectoryRepository construye el repositorio.
func NewDirectoryRepository(store *Store) *DirectoryRepo {
	return &DirectoryRepo{store: store}
}

func (r *DirectoryRepo) ListActive(ctx context.Context) ([]*entity.Tenant, error) {
	out := make([]*entity.Tenant, 0)
	err := r.store.with(ctx, false, func(st *state) error {
		for _, t := range st.tenants {
			if t.Activo {
				cp := *t
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].IDTenant < out[j].IDTenant })
	return out, err
}

func (r *DirectoryRepo) GetActiveUser(ctx context.Context, tenantID, userID string) (*entity.User, error) {
	var out *entity.User
	err := r.store.with(ctx, false, func(st *state) error {
		if u, ok := st.users[userID]; ok && u.IDTenant == tenantID && u.Activo {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *DirectoryRepo) ListActiveByTenant(ctx context.Context, tenantID string) ([]*entity.User, error) {
	out := make([]*entity.User, 0)
	err := r.store.with(ctx, false, func(st *state) error {
		for _, u := range st.users {
			if u.IDTenant == tenantID && u.Activo {
				cp := *u
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].IDUsuario < out[j].IDUsuario })
	return out, err
}

func (r *DirectoryRepo) GetByID(ctx context.Context, tenantID, taskID string) (*entity.Task, error) {
	var out *entity.Task
	err := r.store.with(ctx, false, func(st *state) error {
		if t, ok := st.tasks[taskID]; ok && t.IDTenant == tenantID {
			cp := *t
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *DirectoryRepo) tasksWhere(ctx context.Context, tenantID string, keep func(day time.Time) bool) ([]*entity.Task, error) {
	out := make([]*entity.Task, 0)
	err := r.store.with(ctx, false, func(st *state) error {
		for _, t := range st.tasks {
			if t.IDTenant != tenantID || t.Completada {
				continue
			}
			if keep(dateOnly(t.FechaProgramada)) {
				cp := *t
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].FechaProgramada.Before(out[j].FechaProgramada) })
	return out, err
}

func (r *DirectoryRepo) ListOverdue(ctx context.Context, tenantID string, today time.Time) ([]*entity.Task, error) {
	today = dateOnly(today)
	return r.tasksWhere(ctx, tenantID, func(day time.Time) bool { return day.Before(today) })
}

func (r *DirectoryRepo) ListDueOn(ctx context.Context, tenantID string, day time.Time) ([]*entity.Task, error) {
	day = dateOnly(day)
	return r.tasksWhere(ctx, tenantID, func(d time.Time) bool { return d.Equal(day) })
}

func (r *DirectoryRepo) ListSickWithoutCheckup(ctx context.Context, tenantID string, since time.Time) ([]*entity.Plant, error) {
	out := make([]*entity.Plant, 0)
	err := r.store.with(ctx, false, func(st *state) error {
		for _, p := range st.plants {
			if p.IDTenant != tenantID || p.Estado != entity.PlantaEnferma {
				continue
			}
			if last, ok := st.checkups[p.IDPlanta]; ok && !last.Before(since) {
				continue
			}
			cp := *p
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, err
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
