package entity

// User usuario de un tenant; destinatario de notificaciones generadas.
type User struct {
	IDUsuario string
	IDTenant  string
	Nombre    string
	Activo    bool
}
