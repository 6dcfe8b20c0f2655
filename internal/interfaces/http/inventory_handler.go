package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/application/inventory"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

// InventoryHandler maneja items, movimientos del ledger, estadísticas y reposición (protegido).
type InventoryHandler struct {
	items         *inventory.ItemUseCase
	movements     *inventory.RegisterMovementUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(items *inventory.ItemUseCase, movements *inventory.RegisterMovementUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{items: items, movements: movements, replenishment: replenishment}
}

// CreateItem godoc
// @Summary      Crear item de inventario
// @Description  stock_inicial > 0 se registra como entrada "stock inicial" en el ledger.
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateItemRequest  true  "item"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/items [post]
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.items.Create(c.UserContext(), tenantID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListItems godoc
// @Summary      Listar items con estado de stock y margen
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        categoria     query  string  false  "categoría exacta"
// @Param        q             query  string  false  "búsqueda en nombre o código"
// @Param        solo_activos  query  bool    false  "default true"
// @Param        stock_bajo    query  bool    false  "solo items en o bajo el mínimo"
// @Param        limit         query  int     false  "default 50, máx 200"
// @Param        offset        query  int     false  "default 0"
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/inventario/items [get]
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.items.List(c.UserContext(), tenantID, repository.ItemFilter{
		SoloActivos:   c.QueryBool("solo_activos", true),
		SoloStockBajo: c.QueryBool("stock_bajo", false),
		Categoria:     c.Query("categoria"),
		Busqueda:      c.Query("q"),
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetItem godoc
// @Summary      Obtener item
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "id_item"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id} [get]
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.items.GetByID(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateItem godoc
// @Summary      Actualizar datos del item (no modifica stock)
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "id_item"
// @Param        body  body      dto.UpdateItemRequest  true  "campos a modificar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id} [put]
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.items.Update(c.UserContext(), tenantID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetItemActive godoc
// @Summary      Habilitar o deshabilitar item
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                true  "id_item"
// @Param        body  body  dto.SetActiveRequest  true  "activo"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id}/activo [patch]
func (h *InventoryHandler) SetItemActive(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.SetActiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.items.SetActive(c.UserContext(), tenantID, c.Params("id"), in.Activo); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats godoc
// @Summary      Estadísticas de inventario
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockStatsResponse
// @Router       /api/inventario/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.items.Stats(c.UserContext(), tenantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Items activos en stock bajo o crítico con la cantidad sugerida hasta el stock objetivo.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/inventario/reposicion [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), tenantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":      len(list),
		"reposicion": list,
	})
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  entrada/salida suman o restan cantidad; ajuste fija el stock absoluto en cantidad.
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterMovementRequest  true  "movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/movimientos [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.movements.ApplyMovement(c.UserContext(), inventory.MovementInput{
		TenantID:       tenantID,
		UserID:         userID,
		ItemID:         in.IDItem,
		Tipo:           in.Tipo,
		Cantidad:       in.Cantidad,
		PrecioUnitario: in.PrecioUnitario,
		Motivo:         in.Motivo,
		Referencia:     in.Referencia,
		IDProveedor:    in.IDProveedor,
		Notas:          in.Notas,
		IDTarea:        in.IDTarea,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Historial de movimientos de un item
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "id_item"
// @Param        limit   query  int     false  "default 50, máx 200"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventario/items/{id}/movimientos [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	list, err := h.movements.ListMovements(c.UserContext(), tenantID, c.Params("id"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementListResponse(list))
}
