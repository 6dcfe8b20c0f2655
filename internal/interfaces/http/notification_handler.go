package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/application/notification"
)

// NotificationHandler notificaciones y preferencias del usuario autenticado.
type NotificationHandler struct {
	uc *notification.StoreUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *notification.StoreUseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// List godoc
// @Summary      Listar notificaciones del usuario
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Param        limit           query  int   false  "default 50, máx 200"
// @Param        solo_no_leidas  query  bool  false  "default false"
// @Success      200  {object}  dto.NotificationListResponse
// @Router       /api/notificaciones [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetTenantID(c), GetUserID(c), c.QueryInt("limit", 50), c.QueryBool("solo_no_leidas", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UnreadCount godoc
// @Summary      Cantidad de notificaciones no leídas
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UnreadCountResponse
// @Router       /api/notificaciones/no-leidas [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.uc.UnreadCount(c.UserContext(), GetTenantID(c), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UnreadCountResponse{NoLeidas: n})
}

// Create godoc
// @Summary      Crear notificación manual
// @Tags         notificaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateNotificationRequest  true  "notificación"
// @Success      201   {object}  dto.NotificationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/notificaciones [post]
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateNotificationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MarkRead godoc
// @Summary      Marcar notificación como leída
// @Tags         notificaciones
// @Security     Bearer
// @Param        id   path  string  true  "id_notificacion"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notificaciones/{id}/leida [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.uc.MarkRead(c.UserContext(), GetTenantID(c), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead godoc
// @Summary      Marcar todas las notificaciones como leídas
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/notificaciones/leidas [patch]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.uc.MarkAllRead(c.UserContext(), GetTenantID(c), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"actualizadas": n})
}

// Delete godoc
// @Summary      Eliminar notificación
// @Tags         notificaciones
// @Security     Bearer
// @Param        id   path  string  true  "id_notificacion"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notificaciones/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantID(c), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPreferences godoc
// @Summary      Preferencias de notificación
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PreferenceDTO
// @Router       /api/notificaciones/preferencias [get]
func (h *NotificationHandler) GetPreferences(c *fiber.Ctx) error {
	out, err := h.uc.GetPreferences(c.UserContext(), GetTenantID(c), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpsertPreference godoc
// @Summary      Crear o actualizar preferencia de un tipo
// @Tags         notificaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PreferenceDTO  true  "preferencia"
// @Success      200   {object}  dto.PreferenceDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/notificaciones/preferencias [put]
func (h *NotificationHandler) UpsertPreference(c *fiber.Ctx) error {
	var in dto.PreferenceDTO
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpsertPreference(c.UserContext(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
