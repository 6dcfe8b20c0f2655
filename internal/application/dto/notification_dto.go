package dto

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// NotificationResponse notificación tal como la consume la UI.
type NotificationResponse struct {
	IDNotificacion string          `json:"id_notificacion"`
	IDUsuario      string          `json:"id_usuario"`
	Tipo           string          `json:"tipo"`
	Titulo         string          `json:"titulo"`
	Mensaje        string          `json:"mensaje"`
	Leida          bool            `json:"leida"`
	URLAccion      string          `json:"url_accion"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewNotificationResponse convierte la entidad al contrato externo.
func NewNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		IDNotificacion: n.IDNotificacion,
		IDUsuario:      n.IDUsuario,
		Tipo:           n.Tipo,
		Titulo:         n.Titulo,
		Mensaje:        n.Mensaje,
		Leida:          n.Leida,
		URLAccion:      n.URLAccion,
		Metadata:       n.Metadata,
		CreatedAt:      n.CreatedAt,
	}
}

// NotificationListResponse respuesta de GET /api/notificaciones.
type NotificationListResponse struct {
	Items    []NotificationResponse `json:"items"`
	NoLeidas int                    `json:"no_leidas"`
}

// UnreadCountResponse respuesta de GET /api/notificaciones/no-leidas.
type UnreadCountResponse struct {
	NoLeidas int `json:"no_leidas"`
}

// CreateNotificationRequest body para POST /api/notificaciones.
// id_usuario vacío = el usuario autenticado.
type CreateNotificationRequest struct {
	IDUsuario string          `json:"id_usuario,omitempty"`
	Tipo      string          `json:"tipo"`
	Titulo    string          `json:"titulo"`
	Mensaje   string          `json:"mensaje"`
	URLAccion string          `json:"url_accion"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// PreferenceDTO preferencia por tipo de notificación (lectura y upsert).
type PreferenceDTO struct {
	TipoNotificacion string `json:"tipo_notificacion"`
	Habilitada       bool   `json:"habilitada"`
	Frecuencia       string `json:"frecuencia"`
}

// TenantRunDTO resultado del generador para un tenant.
type TenantRunDTO struct {
	IDTenant   string         `json:"id_tenant"`
	Creadas    map[string]int `json:"creadas"`
	Suprimidas map[string]int `json:"suprimidas"`
	Error      string         `json:"error,omitempty"`
	DuracionMS int64          `json:"duracion_ms"`
}

// RunChecksResponse respuesta de POST /internal/cron/notificaciones.
type RunChecksResponse struct {
	Tenants  []TenantRunDTO `json:"tenants"`
	Total    int            `json:"total"`
	Fallidos int            `json:"fallidos"`
}
