package memory

import (
	"time"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

// Identidad fija del seed de desarrollo.
const (
	DemoTenantID = "00000000-0000-4000-8000-000000000001"
	DemoUserID   = "00000000-0000-4000-8000-000000000002"
)

// SeedDemo carga un tenant con un usuario, dos tareas y una planta enferma para probar la API
// sin base de datos. Los items se crean por la API para que pasen por el ledger.
func (s *Store) SeedDemo(now time.Time) {
	s.AddTenant(entity.Tenant{IDTenant: DemoTenantID, Nombre: "Vivero Demo", Activo: true})
	s.AddUser(entity.User{IDUsuario: DemoUserID, IDTenant: DemoTenantID, Nombre: "Demo", Activo: true})
	s.AddTask(entity.Task{
		IDTarea: "00000000-0000-4000-8000-000000000010", IDTenant: DemoTenantID,
		Titulo: "Riego invernadero 1", FechaProgramada: now.AddDate(0, 0, -1),
	})
	s.AddTask(entity.Task{
		IDTarea: "00000000-0000-4000-8000-000000000011", IDTenant: DemoTenantID,
		Titulo: "Trasplante de plantines", FechaProgramada: now.AddDate(0, 0, 1),
	})
	s.AddPlant(entity.Plant{
		IDPlanta: "00000000-0000-4000-8000-000000000020", IDTenant: DemoTenantID,
		Nombre: "Rosal Lote 3", Estado: entity.PlantaEnferma,
	})
}
