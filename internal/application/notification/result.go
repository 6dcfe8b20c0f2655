package notification

import (
	"fmt"
	"time"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/domain"
)

// TenantResult resultado del ciclo de chequeos de un tenant.
type TenantResult struct {
	TenantID   string
	Created    map[string]int
	Suppressed map[string]int
	Err        error
	Duration   time.Duration
}

func newTenantResult(tenantID string) TenantResult {
	return TenantResult{TenantID: tenantID, Created: map[string]int{}, Suppressed: map[string]int{}}
}

// TotalCreated suma de notificaciones creadas en todos los tipos.
func (r TenantResult) TotalCreated() int {
	total := 0
	for _, n := range r.Created {
		total += n
	}
	return total
}

// BatchResult resultados por tenant, en el orden en que se listaron los tenants.
type BatchResult struct {
	Tenants []TenantResult
}

// Failed cantidad de tenants con error.
func (b *BatchResult) Failed() int {
	n := 0
	for _, t := range b.Tenants {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// Err nil si todos los tenants terminaron bien; si no, envuelve domain.ErrPartialBatch.
func (b *BatchResult) Err() error {
	if f := b.Failed(); f > 0 {
		return fmt.Errorf("%w: %d de %d tenants fallaron", domain.ErrPartialBatch, f, len(b.Tenants))
	}
	return nil
}

// Response convierte el lote al contrato de la ruta de cron.
func (b *BatchResult) Response() dto.RunChecksResponse {
	out := dto.RunChecksResponse{Tenants: make([]dto.TenantRunDTO, 0, len(b.Tenants)), Total: len(b.Tenants)}
	for _, t := range b.Tenants {
		row := dto.TenantRunDTO{
			IDTenant:   t.TenantID,
			Creadas:    t.Created,
			Suprimidas: t.Suppressed,
			DuracionMS: t.Duration.Milliseconds(),
		}
		if t.Err != nil {
			row.Error = t.Err.Error()
			out.Fallidos++
		}
		out.Tenants = append(out.Tenants, row)
	}
	return out
}
