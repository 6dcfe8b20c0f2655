package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/application/inventory"
)

// ConsumptionHandler materiales consumidos por tarea (protegido).
type ConsumptionHandler struct {
	uc *inventory.ConsumptionUseCase
}

// NewConsumptionHandler construye el handler.
func NewConsumptionHandler(uc *inventory.ConsumptionUseCase) *ConsumptionHandler {
	return &ConsumptionHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar materiales consumidos por una tarea
// @Description  Todas las líneas se aplican como salidas en una sola transacción, o ninguna.
// @Tags         tareas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "id_tarea"
// @Param        body  body      dto.RegisterConsumptionRequest  true  "líneas"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tareas/{id}/materiales [post]
func (h *ConsumptionHandler) Register(c *fiber.Ctx) error {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterConsumptionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.ConsumptionLine, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, inventory.ConsumptionLine{ItemID: l.IDItem, Cantidad: l.Cantidad, Motivo: l.Motivo})
	}
	movs, err := h.uc.RegisterConsumption(c.UserContext(), tenantID, userID, c.Params("id"), lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementListResponse(movs))
}

// Summary godoc
// @Summary      Materiales consumidos por una tarea
// @Tags         tareas
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "id_tarea"
// @Success      200  {object}  dto.ConsumptionSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tareas/{id}/materiales [get]
func (h *ConsumptionHandler) Summary(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.ConsumptionSummary(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Reporte PDF de materiales consumidos
// @Tags         tareas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "id_tarea"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tareas/{id}/materiales/pdf [get]
func (h *ConsumptionHandler) PDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	b, err := h.uc.ConsumptionPDF(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="materiales-`+c.Params("id")+`.pdf"`)
	return c.Send(b)
}
