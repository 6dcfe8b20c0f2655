// Package storage abre el backend de persistencia configurado (PostgreSQL o memoria)
// y expone los repositorios que consumen los casos de uso.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/application/notification"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
	"github.com/jhoicas/vivero-api/internal/infrastructure/memory"
	"github.com/jhoicas/vivero-api/internal/infrastructure/postgres"
	"github.com/jhoicas/vivero-api/pkg/config"
)

// TxRunner transacciones del ledger y del Dedup Gate.
type TxRunner interface {
	inventory.TxRunner
	notification.TxRunner
}

// Repos repositorios fuera de transacción más el runner de transacciones.
type Repos struct {
	Tx            TxRunner
	Items         repository.ItemRepository
	Movements     repository.MovementRepository
	Notifications repository.NotificationRepository
	Prefs         repository.PreferenceRepository
	Tenants       repository.TenantRepository
	Users         repository.UserRepository
	Tasks         repository.TaskRepository
	Plants        repository.PlantRepository

	// Memory no nil solo con DB_DRIVER=memory (seed de desarrollo).
	Memory *memory.Store
}

// Open crea los repositorios según cfg.Driver. closeFn libera el pool (no-op en memoria).
func Open(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (repos *Repos, closeFn func(), err error) {
	switch cfg.Driver {
	case "memory":
		store := memory.NewStore()
		dir := memory.NewDirectoryRepository(store)
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Repos{
			Tx:            memory.NewTxRunner(store),
			Items:         memory.NewItemRepository(store),
			Movements:     memory.NewMovementRepository(store),
			Notifications: memory.NewNotificationRepository(store),
			Prefs:         memory.NewPreferenceRepository(store),
			Tenants:       dir,
			Users:         dir,
			Tasks:         dir,
			Plants:        dir,
			Memory:        store,
		}, func() {}, nil

	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.EnsureSchema {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			log.Info().Msg("esquema aplicado")
		}
		dir := postgres.NewDirectoryRepository(pool)
		return &Repos{
			Tx:            postgres.NewTxRunner(pool),
			Items:         postgres.NewItemRepository(pool),
			Movements:     postgres.NewMovementRepository(pool),
			Notifications: postgres.NewNotificationRepository(pool),
			Prefs:         postgres.NewPreferenceRepository(pool),
			Tenants:       dir,
			Users:         dir,
			Tasks:         dir,
			Plants:        dir,
		}, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("DB_DRIVER no soportado: %q", cfg.Driver)
}
