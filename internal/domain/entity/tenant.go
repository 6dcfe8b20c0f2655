package entity

// Tenant organización aislada (vivero). Toda fila pertenece exactamente a uno.
type Tenant struct {
	IDTenant string
	Nombre   string
	Activo   bool
}
