package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los adaptadores y casos de uso los envuelven con fmt.Errorf("...: %w", err);
// los consumidores los comparan con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrTransientStore    = errors.New("almacén no disponible temporalmente")
	ErrPartialBatch      = errors.New("lote procesado con fallas parciales")
)
