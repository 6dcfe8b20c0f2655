package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// MovementRepo ledger append-only en memoria.
type MovementRepo struct {
	store *Store
	tx    bool
}

var _ repository.MovementRepository = (*MovementRepo)(nil)

// NewMovementRepository repositorio fuera de transacción.
func NewMovementRepository(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	return r.store.with(ctx, r.tx, func(st *state) error {
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

// ListByItem más reciente primero; a igual fecha, el último insertado primero.
func (r *MovementRepo) ListByItem(ctx context.Context, tenantID, itemID string, limit, offset int) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0)
	err := r.store.with(ctx, r.tx, func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.IDTenant == tenantID && m.IDItem == itemID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	if offset >= len(out) {
		return []*entity.Movement{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MovementRepo) ListByTask(ctx context.Context, tenantID, taskID string) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0)
	err := r.store.with(ctx, r.tx, func(st *state) error {
		for _, m := range st.movements {
			if m.IDTenant == tenantID && m.IDTarea != nil && *m.IDTarea == taskID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}
