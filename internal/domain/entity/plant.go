package entity

// Estados de planta relevantes para el escaneo de salud.
const (
	PlantaSana    = "sana"
	PlantaEnferma = "enferma"
)

// Plant lote o ejemplar de planta del vivero.
type Plant struct {
	IDPlanta string
	IDTenant string
	Nombre   string
	Estado   string
}
