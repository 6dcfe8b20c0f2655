package entity

import (
	"encoding/json"
	"time"
)

// Tipos de notificación (contrato externo).
const (
	NotificacionStockBajo     = "stock_bajo"
	NotificacionStockCritico  = "stock_critico"
	NotificacionTareaVencida  = "tarea_vencida"
	NotificacionTareaProxima  = "tarea_proxima"
	NotificacionPlantaEnferma = "planta_enferma"
)

// TiposNotificacion enumera todos los tipos válidos en orden estable.
var TiposNotificacion = []string{
	NotificacionStockBajo,
	NotificacionStockCritico,
	NotificacionTareaVencida,
	NotificacionTareaProxima,
	NotificacionPlantaEnferma,
}

// IsValidTipoNotificacion indica si t pertenece al conjunto cerrado de tipos.
func IsValidTipoNotificacion(t string) bool {
	for _, v := range TiposNotificacion {
		if v == t {
			return true
		}
	}
	return false
}

// Notification es un aviso por usuario y tenant. Solo Leida es mutable.
type Notification struct {
	IDNotificacion string
	IDTenant       string
	IDUsuario      string
	Tipo           string
	Titulo         string
	Mensaje        string
	Leida          bool
	URLAccion      string
	Metadata       json.RawMessage
	CreatedAt      time.Time
}
