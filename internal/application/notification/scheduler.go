package notification

import (
	"context"
	"time"
)

// Schedule corre RunChecksForAllTenants cada interval hasta que ctx se cancele.
// Un ciclo no se solapa con el siguiente: si uno tarda más que interval, el tick pendiente se descarta.
func (uc *GeneratorUseCase) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	uc.log.Info().Dur("intervalo", interval).Msg("scheduler de notificaciones iniciado")
	for {
		select {
		case <-ctx.Done():
			uc.log.Info().Msg("scheduler de notificaciones detenido")
			return
		case <-ticker.C:
			if _, err := uc.RunChecksForAllTenants(ctx); err != nil && ctx.Err() == nil {
				uc.log.Error().Err(err).Msg("ciclo de notificaciones")
			}
		}
	}
}
