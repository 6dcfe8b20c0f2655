package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/application/notification"
)

// Roles con permiso para modificar el catálogo de items.
var catalogRoles = []string{"admin", "encargado"}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Items         *inventory.ItemUseCase
	Movements     *inventory.RegisterMovementUseCase
	Consumption   *inventory.ConsumptionUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Notifications *notification.StoreUseCase
	Generator     *notification.GeneratorUseCase
	JWTSecret     string
	CronSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Scheduler externo (sin JWT, secreto compartido opcional)
	cron := NewCronHandler(deps.Generator, deps.CronSecret)
	app.Post("/internal/cron/notificaciones", cron.RunNotifications)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	inv := api.Group("/inventario")
	inventoryHandler := NewInventoryHandler(deps.Items, deps.Movements, deps.Replenishment)
	inv.Post("/items", RequireRole(catalogRoles...), inventoryHandler.CreateItem)
	inv.Get("/items", inventoryHandler.ListItems)
	inv.Get("/items/:id", inventoryHandler.GetItem)
	inv.Put("/items/:id", RequireRole(catalogRoles...), inventoryHandler.UpdateItem)
	inv.Patch("/items/:id/activo", RequireRole(catalogRoles...), inventoryHandler.SetItemActive)
	inv.Get("/items/:id/movimientos", inventoryHandler.ListMovements)
	inv.Get("/stats", inventoryHandler.Stats)
	inv.Get("/reposicion", inventoryHandler.GetReplenishmentList)
	inv.Post("/movimientos", inventoryHandler.RegisterMovement)

	tareas := api.Group("/tareas")
	consumptionHandler := NewConsumptionHandler(deps.Consumption)
	tareas.Post("/:id/materiales", consumptionHandler.Register)
	tareas.Get("/:id/materiales", consumptionHandler.Summary)
	tareas.Get("/:id/materiales/pdf", consumptionHandler.PDF)

	notif := api.Group("/notificaciones")
	notificationHandler := NewNotificationHandler(deps.Notifications)
	notif.Get("/", notificationHandler.List)
	notif.Post("/", notificationHandler.Create)
	notif.Get("/no-leidas", notificationHandler.UnreadCount)
	notif.Patch("/leidas", notificationHandler.MarkAllRead)
	notif.Get("/preferencias", notificationHandler.GetPreferences)
	notif.Put("/preferencias", notificationHandler.UpsertPreference)
	notif.Patch("/:id/leida", notificationHandler.MarkRead)
	notif.Delete("/:id", notificationHandler.Delete)
}
