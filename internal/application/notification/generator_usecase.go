package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

const sickPlantLookback = 7 * 24 * time.Hour

// GeneratorConfig parámetros del generador.
type GeneratorConfig struct {
	Workers       int
	TenantTimeout time.Duration
}

// GeneratorDeps repositorios de lectura que usa el generador.
type GeneratorDeps struct {
	Tenants repository.TenantRepository
	Users   repository.UserRepository
	Items   repository.ItemRepository
	Tasks   repository.TaskRepository
	Plants  repository.PlantRepository
	Prefs   repository.PreferenceRepository
}

// GeneratorUseCase recorre los tenants activos y emite notificaciones de stock, tareas y plantas.
// Un tenant que falla o se cuelga no impide procesar los demás.
type GeneratorUseCase struct {
	deps GeneratorDeps
	gate *DedupGate
	cfg  GeneratorConfig
	log  zerolog.Logger
	now  func() time.Time
}

// NewGeneratorUseCase construye el generador.
func NewGeneratorUseCase(deps GeneratorDeps, gate *DedupGate, cfg GeneratorConfig, log zerolog.Logger) *GeneratorUseCase {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.TenantTimeout <= 0 {
		cfg.TenantTimeout = 30 * time.Second
	}
	return &GeneratorUseCase{deps: deps, gate: gate, cfg: cfg, log: log, now: time.Now}
}

// WithClock reemplaza el reloj del generador y del gate (tests).
func (uc *GeneratorUseCase) WithClock(now func() time.Time) *GeneratorUseCase {
	uc.now = now
	uc.gate.WithClock(now)
	return uc
}

// RunChecksForAllTenants ejecuta el ciclo sobre todos los tenants activos con paralelismo acotado.
// Solo devuelve error si no se pudo listar los tenants; las fallas por tenant van en el resultado.
func (uc *GeneratorUseCase) RunChecksForAllTenants(ctx context.Context) (*BatchResult, error) {
	tenants, err := uc.deps.Tenants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar tenants: %w", err)
	}

	results := make([]TenantResult, len(tenants))
	var g errgroup.Group
	g.SetLimit(uc.cfg.Workers)
	for i, t := range tenants {
		i, tenantID := i, t.IDTenant
		g.Go(func() error {
			results[i] = uc.runTenant(ctx, tenantID)
			return nil
		})
	}
	_ = g.Wait()

	batch := &BatchResult{Tenants: results}
	ev := uc.log.Info()
	if batch.Failed() > 0 {
		ev = uc.log.Warn()
	}
	ev.Int("tenants", len(results)).Int("fallidos", batch.Failed()).Msg("ciclo de notificaciones terminado")
	return batch, nil
}

// runTenant aplica el timeout por tenant. Si RunChecks no respeta el contexto, el select
// igual lo corta en el deadline y lo marca como fallido.
func (uc *GeneratorUseCase) runTenant(ctx context.Context, tenantID string) TenantResult {
	start := time.Now()
	tctx, cancel := context.WithTimeout(ctx, uc.cfg.TenantTimeout)
	defer cancel()

	done := make(chan TenantResult, 1)
	go func() {
		done <- uc.RunChecks(tctx, tenantID)
	}()

	var res TenantResult
	select {
	case res = <-done:
	case <-tctx.Done():
		res = newTenantResult(tenantID)
		res.Err = fmt.Errorf("tenant %s: %w", tenantID, tctx.Err())
	}
	res.Duration = time.Since(start)
	if res.Err != nil {
		uc.log.Error().Err(res.Err).Str("tenant", tenantID).Msg("chequeos de notificaciones fallaron")
	} else {
		uc.log.Debug().Str("tenant", tenantID).Int("creadas", res.TotalCreated()).Dur("duracion", res.Duration).Msg("chequeos de notificaciones")
	}
	return res
}

// RunChecks ejecuta los tres escaneos de un tenant y emite a sus usuarios activos.
func (uc *GeneratorUseCase) RunChecks(ctx context.Context, tenantID string) TenantResult {
	res := newTenantResult(tenantID)
	cands, err := uc.collect(ctx, tenantID)
	if err != nil {
		res.Err = err
		return res
	}
	if len(cands) == 0 {
		return res
	}
	users, err := uc.deps.Users.ListActiveByTenant(ctx, tenantID)
	if err != nil {
		res.Err = fmt.Errorf("usuarios: %w", err)
		return res
	}
	for _, u := range users {
		if err := uc.emitToUser(ctx, tenantID, u.IDUsuario, cands, &res); err != nil {
			res.Err = err
			return res
		}
	}
	return res
}

func (uc *GeneratorUseCase) collect(ctx context.Context, tenantID string) ([]candidate, error) {
	var cands []candidate
	add := func(c candidate, err error) error {
		if err != nil {
			return err
		}
		cands = append(cands, c)
		return nil
	}

	items, err := uc.deps.Items.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	var criticos, bajos []*entity.Item
	for _, it := range items {
		switch inventory.Classify(it.StockActual, it.StockMinimo) {
		case inventory.LevelCritico:
			criticos = append(criticos, it)
		case inventory.LevelBajo:
			bajos = append(bajos, it)
		}
	}
	if len(criticos) > 0 {
		if err := add(stockCriticoCandidate(criticos)); err != nil {
			return nil, err
		}
	}
	if len(bajos) > 0 {
		if err := add(stockBajoCandidate(bajos)); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	vencidas, err := uc.deps.Tasks.ListOverdue(ctx, tenantID, today)
	if err != nil {
		return nil, fmt.Errorf("tareas vencidas: %w", err)
	}
	if len(vencidas) > 0 {
		if err := add(tareaVencidaCandidate(vencidas)); err != nil {
			return nil, err
		}
	}
	proximas, err := uc.deps.Tasks.ListDueOn(ctx, tenantID, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("tareas próximas: %w", err)
	}
	if len(proximas) > 0 {
		if err := add(tareaProximaCandidate(proximas)); err != nil {
			return nil, err
		}
	}

	enfermas, err := uc.deps.Plants.ListSickWithoutCheckup(ctx, tenantID, now.Add(-sickPlantLookback))
	if err != nil {
		return nil, fmt.Errorf("plantas: %w", err)
	}
	if len(enfermas) > 0 {
		if err := add(plantaEnfermaCandidate(enfermas)); err != nil {
			return nil, err
		}
	}
	return cands, nil
}

func (uc *GeneratorUseCase) emitToUser(ctx context.Context, tenantID, userID string, cands []candidate, res *TenantResult) error {
	prefs, err := uc.deps.Prefs.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return fmt.Errorf("preferencias %s: %w", userID, err)
	}
	byTipo := make(map[string]*entity.NotificationPreference, len(prefs))
	for _, p := range prefs {
		byTipo[p.TipoNotificacion] = p
	}
	for _, c := range cands {
		window, ok := uc.gate.WindowFor(byTipo[c.tipo])
		if !ok {
			res.Suppressed[c.tipo]++
			continue
		}
		n := &entity.Notification{
			IDNotificacion: uuid.New().String(),
			IDTenant:       tenantID,
			IDUsuario:      userID,
			Tipo:           c.tipo,
			Titulo:         c.titulo,
			Mensaje:        c.mensaje,
			URLAccion:      c.urlAccion,
			Metadata:       c.metadata,
			CreatedAt:      uc.now(),
		}
		created, err := uc.gate.EmitIfAbsent(ctx, n, window)
		if err != nil {
			return fmt.Errorf("emitir %s a %s: %w", c.tipo, userID, err)
		}
		if created {
			res.Created[c.tipo]++
		} else {
			res.Suppressed[c.tipo]++
		}
	}
	return nil
}
