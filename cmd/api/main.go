package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/application/notification"
	"github.com/jhoicas/vivero-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/vivero-api/internal/infrastructure/pdf"
	"github.com/jhoicas/vivero-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/vivero-api/internal/interfaces/http"
	"github.com/jhoicas/vivero-api/pkg/config"
	"github.com/jhoicas/vivero-api/pkg/jwt"
	"github.com/jhoicas/vivero-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := storage.Open(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer closeStore()
	if repos.Memory != nil && cfg.App.Env == "development" {
		seedDemo(repos.Memory, cfg, log)
	}

	policy := inventory.Policy{
		AllowNegativeStock: cfg.Inventory.AllowNegativeStock,
		WeightedCost:       cfg.Inventory.WeightedCost,
	}
	invLog := log.Component("inventario")
	itemUC := inventory.NewItemUseCase(repos.Tx, repos.Items, policy)
	registerMovementUC := inventory.NewRegisterMovementUseCase(repos.Tx, repos.Movements, repos.Tasks, policy, invLog)
	consumptionUC := inventory.NewConsumptionUseCase(
		repos.Tx, repos.Items, repos.Movements, repos.Tasks,
		infrapdf.NewMarotoPDFGenerator(cfg.App.Name), policy, invLog,
	)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Items)

	notificationUC := notification.NewStoreUseCase(repos.Notifications, repos.Prefs, repos.Users)
	gate := notification.NewDedupGate(repos.Tx, cfg.Notify.DedupWindow)
	generatorUC := notification.NewGeneratorUseCase(notification.GeneratorDeps{
		Tenants: repos.Tenants,
		Users:   repos.Users,
		Items:   repos.Items,
		Tasks:   repos.Tasks,
		Plants:  repos.Plants,
		Prefs:   repos.Prefs,
	}, gate, notification.GeneratorConfig{
		Workers:       cfg.Notify.Workers,
		TenantTimeout: cfg.Notify.TenantTimeout,
	}, log.Component("notificaciones"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Vivero API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Items:         itemUC,
		Movements:     registerMovementUC,
		Consumption:   consumptionUC,
		Replenishment: replenishmentUC,
		Notifications: notificationUC,
		Generator:     generatorUC,
		JWTSecret:     cfg.JWT.Secret,
		CronSecret:    cfg.HTTP.CronSecret,
	})

	// Ticker interno; con NOTIFY_INTERVAL=0 el ciclo lo dispara un cron externo.
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		generatorUC.Schedule(ctx, cfg.Notify.Interval)
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("scheduler no terminó a tiempo")
	}

	log.Info().Msg("aplicación detenida")
}

// seedDemo carga datos de ejemplo y registra un token de desarrollo para la identidad demo.
func seedDemo(store *memory.Store, cfg *config.Config, log *logger.Logger) {
	store.SeedDemo(time.Now())
	tok, err := jwt.Generate(cfg.JWT.Secret, jwt.Identity{
		UserID:   memory.DemoUserID,
		TenantID: memory.DemoTenantID,
		Role:     "admin",
	}, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Error().Err(err).Msg("token demo")
		return
	}
	log.Info().Str("tenant", memory.DemoTenantID).Str("token", tok).Msg("seed demo cargado")
}
