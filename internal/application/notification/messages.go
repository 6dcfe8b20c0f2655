package notification

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/vivero-api/internal/domain/entity"
)

const maxNamesInMessage = 3

// candidate notificación a emitir a cada destinatario del tenant.
type candidate struct {
	tipo      string
	titulo    string
	mensaje   string
	urlAccion string
	metadata  json.RawMessage
}

type metadataRef struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type metadataPayload struct {
	Items []metadataRef `json:"items"`
	Total int           `json:"total"`
}

// joinNames "A, B, C y 2 más".
func joinNames(names []string) string {
	if len(names) <= maxNamesInMessage {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s y %d más", strings.Join(names[:maxNamesInMessage], ", "), len(names)-maxNamesInMessage)
}

func newCandidate(tipo, titulo, mensaje, url string, refs []metadataRef) (candidate, error) {
	meta, err := json.Marshal(metadataPayload{Items: refs, Total: len(refs)})
	if err != nil {
		return candidate{}, fmt.Errorf("metadata %s: %w", tipo, err)
	}
	return candidate{tipo: tipo, titulo: titulo, mensaje: mensaje, urlAccion: url, metadata: meta}, nil
}

func itemRefs(items []*entity.Item) ([]metadataRef, []string) {
	refs := make([]metadataRef, 0, len(items))
	names := make([]string, 0, len(items))
	for _, it := range items {
		refs = append(refs, metadataRef{ID: it.IDItem, Nombre: it.Nombre})
		names = append(names, it.Nombre)
	}
	return refs, names
}

func stockCriticoCandidate(items []*entity.Item) (candidate, error) {
	refs, names := itemRefs(items)
	msg := fmt.Sprintf("%d item(s) sin stock: %s", len(items), joinNames(names))
	return newCandidate(entity.NotificacionStockCritico, "Stock crítico", msg, "/inventario", refs)
}

func stockBajoCandidate(items []*entity.Item) (candidate, error) {
	refs, names := itemRefs(items)
	msg := fmt.Sprintf("%d item(s) en o por debajo del stock mínimo: %s", len(items), joinNames(names))
	return newCandidate(entity.NotificacionStockBajo, "Stock bajo", msg, "/inventario", refs)
}

func taskRefs(tasks []*entity.Task) ([]metadataRef, []string) {
	refs := make([]metadataRef, 0, len(tasks))
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		refs = append(refs, metadataRef{ID: t.IDTarea, Nombre: t.Titulo})
		names = append(names, t.Titulo)
	}
	return refs, names
}

func tareaVencidaCandidate(tasks []*entity.Task) (candidate, error) {
	refs, names := taskRefs(tasks)
	msg := fmt.Sprintf("%d tarea(s) vencida(s) sin completar: %s", len(tasks), joinNames(names))
	return newCandidate(entity.NotificacionTareaVencida, "Tareas vencidas", msg, "/tareas", refs)
}

func tareaProximaCandidate(tasks []*entity.Task) (candidate, error) {
	refs, names := taskRefs(tasks)
	msg := fmt.Sprintf("%d tarea(s) programada(s) para mañana: %s", len(tasks), joinNames(names))
	return newCandidate(entity.NotificacionTareaProxima, "Tareas para mañana", msg, "/tareas", refs)
}

func plantaEnfermaCandidate(plants []*entity.Plant) (candidate, error) {
	refs := make([]metadataRef, 0, len(plants))
	names := make([]string, 0, len(plants))
	for _, p := range plants {
		refs = append(refs, metadataRef{ID: p.IDPlanta, Nombre: p.Nombre})
		names = append(names, p.Nombre)
	}
	msg := fmt.Sprintf("%d planta(s) enferma(s) sin revisión en los últimos 7 días: %s", len(plants), joinNames(names))
	return newCandidate(entity.NotificacionPlantaEnferma, "Plantas enfermas sin revisión", msg, "/plantas", refs)
}
