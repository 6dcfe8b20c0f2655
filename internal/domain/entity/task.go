package entity

import "time"

// Task tarea programada del vivero (riego, trasplante, fumigación...).
// Este núcleo solo la lee: el CRUD de tareas vive fuera.
type Task struct {
	IDTarea           string
	IDTenant          string
	Titulo            string
	FechaProgramada   time.Time // fecha (sin hora significativa)
	Completada        bool
	IDUsuarioAsignado *string
}
