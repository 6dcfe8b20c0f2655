// Package memory implementa los repositorios sobre un estado en memoria.
// Se usa con DB_DRIVER=memory y en los tests de casos de uso y handlers.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

type prefKey struct {
	tenant, user, tipo string
}

// state las entidades se reemplazan, nunca se mutan en sitio: clonar los mapas basta para un snapshot.
type state struct {
	tenants       map[string]*entity.Tenant
	users         map[string]*entity.User
	items         map[string]*entity.Item
	movements     []*entity.Movement
	notifications map[string]*entity.Notification
	prefs         map[prefKey]*entity.NotificationPreference
	tasks         map[string]*entity.Task
	plants        map[string]*entity.Plant
	checkups      map[string]time.Time // id_planta -> última entrada de historial clínico
}

func newState() *state {
	return &state{
		tenants:       map[string]*entity.Tenant{},
		users:         map[string]*entity.User{},
		items:         map[string]*entity.Item{},
		notifications: map[string]*entity.Notification{},
		prefs:         map[prefKey]*entity.NotificationPreference{},
		tasks:         map[string]*entity.Task{},
		plants:        map[string]*entity.Plant{},
		checkups:      map[string]time.Time{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) snapshot() *state {
	return &state{
		tenants:       cloneMap(s.tenants),
		users:         cloneMap(s.users),
		items:         cloneMap(s.items),
		movements:     append([]*entity.Movement(nil), s.movements...),
		notifications: cloneMap(s.notifications),
		prefs:         cloneMap(s.prefs),
		tasks:         cloneMap(s.tasks),
		plants:        cloneMap(s.plants),
		checkups:      cloneMap(s.checkups),
	}
}

// Store estado compartido por todos los repositorios en memoria.
// Las transacciones toman el mutex completo: son serializables.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// with ejecuta fn sobre el estado. Dentro de una tx el mutex ya está tomado.
func (s *Store) with(ctx context.Context, tx bool, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !tx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// TxRunner implementa las transacciones de inventario y de notificaciones.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.st.snapshot()
	if err := fn(); err != nil {
		s.st = saved
		return err
	}
	if err := ctx.Err(); err != nil {
		s.st = saved
		return err
	}
	return nil
}

// Run ejecuta fn con repositorios de item y movimiento atados a la tx. Error -> rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(itemRepo repository.ItemRepository, movRepo repository.MovementRepository) error) error {
	return r.run(ctx, func() error {
		return fn(&ItemRepo{store: r.store, tx: true}, &MovementRepo{store: r.store, tx: true})
	})
}

// RunNotification ejecuta fn con el repositorio de notificaciones atado a la tx.
func (r *TxRunner) RunNotification(ctx context.Context, fn func(repo repository.NotificationRepository) error) error {
	return r.run(ctx, func() error {
		return fn(&NotificationRepo{store: r.store, tx: true})
	})
}

// AddTenant registra un tenant (seed y tests).
func (s *Store) AddTenant(t entity.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.tenants[t.IDTenant] = &t
}

// AddUser registra un usuario.
func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.IDUsuario] = &u
}

// AddTask registra una tarea.
func (s *Store) AddTask(t entity.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.tasks[t.IDTarea] = &t
}

// AddPlant registra una planta.
func (s *Store) AddPlant(p entity.Plant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.plants[p.IDPlanta] = &p
}

// RecordCheckup registra una entrada de historial clínico de la planta.
func (s *Store) RecordCheckup(plantID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.st.checkups[plantID]; !ok || at.After(prev) {
		s.st.checkups[plantID] = at
	}
}

var _ interface {
	Run(context.Context, func(repository.ItemRepository, repository.MovementRepository) error) error
	RunNotification(context.Context, func(repository.NotificationRepository) error) error
} = (*TxRunner)(nil)
