package entity

import "time"

// Frecuencias de notificación.
const (
	FrecuenciaInmediata     = "inmediata"
	FrecuenciaDiaria        = "diaria"
	FrecuenciaSemanal       = "semanal"
	FrecuenciaDeshabilitada = "deshabilitada"
)

// IsValidFrecuencia indica si f es una frecuencia conocida.
func IsValidFrecuencia(f string) bool {
	switch f {
	case FrecuenciaInmediata, FrecuenciaDiaria, FrecuenciaSemanal, FrecuenciaDeshabilitada:
		return true
	}
	return false
}

// NotificationPreference preferencia de un usuario para un tipo de notificación.
type NotificationPreference struct {
	IDTenant         string
	IDUsuario        string
	TipoNotificacion string
	Habilitada       bool
	Frecuencia       string
	UpdatedAt        time.Time
}

// Enabled indica si la preferencia permite emitir notificaciones.
func (p *NotificationPreference) Enabled() bool {
	return p.Habilitada && p.Frecuencia != FrecuenciaDeshabilitada
}

// DefaultPreferences devuelve las preferencias iniciales de un usuario (todas habilitadas, inmediatas).
func DefaultPreferences(tenantID, userID string, now time.Time) []*NotificationPreference {
	prefs := make([]*NotificationPreference, 0, len(TiposNotificacion))
	for _, t := range TiposNotificacion {
		prefs = append(prefs, &NotificationPreference{
			IDTenant:         tenantID,
			IDUsuario:        userID,
			TipoNotificacion: t,
			Habilitada:       true,
			Frecuencia:       FrecuenciaInmediata,
			UpdatedAt:        now,
		})
	}
	return prefs
}
