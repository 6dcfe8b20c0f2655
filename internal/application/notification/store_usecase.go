package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/domain"
	"github.com/jhoicas/vivero-api/internal/domain/entity"
	"github.com/jhoicas/vivero-api/internal/domain/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// StoreUseCase operaciones del usuario sobre sus notificaciones y preferencias.
// Toda llamada recibe el (tenant, usuario) ya resuelto por la capa HTTP.
type StoreUseCase struct {
	repo  repository.NotificationRepository
	prefs repository.PreferenceRepository
	users repository.UserRepository
	now   func() time.Time
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(repo repository.NotificationRepository, prefs repository.PreferenceRepository, users repository.UserRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo, prefs: prefs, users: users, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *StoreUseCase) WithClock(now func() time.Time) *StoreUseCase {
	uc.now = now
	return uc
}

// List notificaciones del usuario, más recientes primero. Usuario vacío -> lista vacía.
func (uc *StoreUseCase) List(ctx context.Context, tenantID, userID string, limit int, soloNoLeidas bool) (*dto.NotificationListResponse, error) {
	out := &dto.NotificationListResponse{Items: []dto.NotificationResponse{}}
	if tenantID == "" || userID == "" {
		return out, nil
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	list, err := uc.repo.ListByUser(ctx, tenantID, userID, limit, soloNoLeidas)
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		out.Items = append(out.Items, dto.NewNotificationResponse(n))
	}
	unread, err := uc.repo.CountUnread(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	out.NoLeidas = unread
	return out, nil
}

// UnreadCount cantidad de no leídas. Usuario vacío -> 0.
func (uc *StoreUseCase) UnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	if tenantID == "" || userID == "" {
		return 0, nil
	}
	return uc.repo.CountUnread(ctx, tenantID, userID)
}

// owned carga la notificación y verifica que pertenezca a (tenant, usuario).
func (uc *StoreUseCase) owned(ctx context.Context, tenantID, userID, id string) (*entity.Notification, error) {
	if tenantID == "" || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	n, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: notificación %s", domain.ErrNotFound, id)
	}
	if n.IDTenant != tenantID || n.IDUsuario != userID {
		return nil, fmt.Errorf("%w: notificación %s", domain.ErrForbidden, id)
	}
	return n, nil
}

// MarkRead marca una notificación como leída. Marcarla dos veces no es error.
func (uc *StoreUseCase) MarkRead(ctx context.Context, tenantID, userID, id string) error {
	n, err := uc.owned(ctx, tenantID, userID, id)
	if err != nil {
		return err
	}
	if n.Leida {
		return nil
	}
	return uc.repo.MarkRead(ctx, id)
}

// MarkAllRead marca todas las no leídas del usuario y devuelve cuántas cambió.
func (uc *StoreUseCase) MarkAllRead(ctx context.Context, tenantID, userID string) (int, error) {
	if tenantID == "" || userID == "" {
		return 0, domain.ErrUnauthorized
	}
	return uc.repo.MarkAllRead(ctx, tenantID, userID)
}

// Delete elimina una notificación propia.
func (uc *StoreUseCase) Delete(ctx context.Context, tenantID, userID, id string) error {
	if _, err := uc.owned(ctx, tenantID, userID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// Create inserta una notificación manual. id_usuario vacío apunta al usuario autenticado.
func (uc *StoreUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	if tenantID == "" || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !entity.IsValidTipoNotificacion(in.Tipo) {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrValidation, in.Tipo)
	}
	in.Titulo = strings.TrimSpace(in.Titulo)
	if in.Titulo == "" {
		return nil, fmt.Errorf("%w: titulo requerido", domain.ErrValidation)
	}
	if len(in.Metadata) > 0 && !json.Valid(in.Metadata) {
		return nil, fmt.Errorf("%w: metadata no es JSON", domain.ErrValidation)
	}
	target := in.IDUsuario
	if target == "" {
		target = userID
	}
	recipient, err := uc.users.GetActiveUser(ctx, tenantID, target)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, fmt.Errorf("%w: destinatario %s", domain.ErrNotFound, target)
	}
	n := &entity.Notification{
		IDNotificacion: uuid.New().String(),
		IDTenant:       tenantID,
		IDUsuario:      target,
		Tipo:           in.Tipo,
		Titulo:         in.Titulo,
		Mensaje:        in.Mensaje,
		URLAccion:      in.URLAccion,
		Metadata:       in.Metadata,
		CreatedAt:      uc.now(),
	}
	if err := uc.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	resp := dto.NewNotificationResponse(n)
	return &resp, nil
}

// GetPreferences devuelve una preferencia por tipo. Los tipos sin fila se siembran con los valores por defecto.
func (uc *StoreUseCase) GetPreferences(ctx context.Context, tenantID, userID string) ([]dto.PreferenceDTO, error) {
	out := []dto.PreferenceDTO{}
	if tenantID == "" || userID == "" {
		return out, nil
	}
	stored, err := uc.prefs.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	byTipo := make(map[string]*entity.NotificationPreference, len(stored))
	for _, p := range stored {
		byTipo[p.TipoNotificacion] = p
	}
	for _, def := range entity.DefaultPreferences(tenantID, userID, uc.now()) {
		p, ok := byTipo[def.TipoNotificacion]
		if !ok {
			if err := uc.prefs.Upsert(ctx, def); err != nil {
				return nil, err
			}
			p = def
		}
		out = append(out, dto.PreferenceDTO{
			TipoNotificacion: p.TipoNotificacion,
			Habilitada:       p.Habilitada,
			Frecuencia:       p.Frecuencia,
		})
	}
	return out, nil
}

// UpsertPreference crea o actualiza la preferencia de un tipo.
func (uc *StoreUseCase) UpsertPreference(ctx context.Context, tenantID, userID string, in dto.PreferenceDTO) (*dto.PreferenceDTO, error) {
	if tenantID == "" || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !entity.IsValidTipoNotificacion(in.TipoNotificacion) {
		return nil, fmt.Errorf("%w: tipo_notificacion %q", domain.ErrValidation, in.TipoNotificacion)
	}
	if in.Frecuencia == "" {
		in.Frecuencia = entity.FrecuenciaInmediata
	}
	if !entity.IsValidFrecuencia(in.Frecuencia) {
		return nil, fmt.Errorf("%w: frecuencia %q", domain.ErrValidation, in.Frecuencia)
	}
	p := &entity.NotificationPreference{
		IDTenant:         tenantID,
		IDUsuario:        userID,
		TipoNotificacion: in.TipoNotificacion,
		Habilitada:       in.Habilitada,
		Frecuencia:       in.Frecuencia,
		UpdatedAt:        uc.now(),
	}
	if err := uc.prefs.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return &in, nil
}
