package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/application/notification"
)

// CronSecretHeader header con el secreto compartido del scheduler externo.
const CronSecretHeader = "X-Cron-Secret"

// CronHandler disparo manual o externo del generador de notificaciones.
type CronHandler struct {
	generator *notification.GeneratorUseCase
	secret    string
}

// NewCronHandler construye el handler. secret vacío = sin verificación.
func NewCronHandler(generator *notification.GeneratorUseCase, secret string) *CronHandler {
	return &CronHandler{generator: generator, secret: secret}
}

// RunNotifications godoc
// @Summary      Ejecutar chequeos de notificaciones para todos los tenants
// @Description  200 si todos los tenants terminaron bien; 207 si alguno falló.
// @Tags         internal
// @Produce      json
// @Param        X-Cron-Secret  header  string  false  "secreto compartido"
// @Success      200  {object}  dto.RunChecksResponse
// @Success      207  {object}  dto.RunChecksResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /internal/cron/notificaciones [post]
func (h *CronHandler) RunNotifications(c *fiber.Ctx) error {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.Get(CronSecretHeader)), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CRON_SECRET", Message: "secreto inválido"})
	}
	batch, err := h.generator.RunChecksForAllTenants(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BATCH_FAILED", Message: err.Error()})
	}
	status := fiber.StatusOK
	if batch.Err() != nil {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(batch.Response())
}
