// run_checks ejecuta un ciclo del generador de notificaciones para todos los tenants y termina.
// Pensado para un cron externo cuando NOTIFY_INTERVAL=0 en cmd/api.
//
// Uso: go run ./cmd/run_checks [-timeout 5m]
// Código de salida: 0 todo bien, 2 algún tenant falló, 1 error fatal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/vivero-api/internal/application/notification"
	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/infrastructure/storage"
	"github.com/jhoicas/vivero-api/pkg/config"
	"github.com/jhoicas/vivero-api/pkg/logger"
)

const exitPartial = 2

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo del ciclo completo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-run-checks",
		Out:     os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	os.Exit(run(ctx, cfg, log))
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) int {
	repos, closeStore, err := storage.Open(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		log.Error().Err(err).Msg("abrir almacenamiento")
		return 1
	}
	defer closeStore()

	gen := notification.NewGeneratorUseCase(notification.GeneratorDeps{
		Tenants: repos.Tenants,
		Users:   repos.Users,
		Items:   repos.Items,
		Tasks:   repos.Tasks,
		Plants:  repos.Plants,
		Prefs:   repos.Prefs,
	}, notification.NewDedupGate(repos.Tx, cfg.Notify.DedupWindow), notification.GeneratorConfig{
		Workers:       cfg.Notify.Workers,
		TenantTimeout: cfg.Notify.TenantTimeout,
	}, log.Component("notificaciones"))

	batch, err := gen.RunChecksForAllTenants(ctx)
	if err != nil {
		log.Error().Err(err).Msg("ciclo de notificaciones")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch.Response()); err != nil {
		log.Error().Err(err).Msg("escribir resumen")
	}
	if err := batch.Err(); errors.Is(err, domain.ErrPartialBatch) {
		log.Warn().Err(err).Msg("ciclo parcial")
		return exitPartial
	}
	return 0
}
