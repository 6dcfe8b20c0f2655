package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/vivero-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isInvalidText 22P02: un literal que la columna no acepta, típicamente un id que no es UUID.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// validIDs las claves de todas las tablas son UUID; un id mal formado no puede existir.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return false
		}
	}
	return true
}

// isTransient errores que un reintento podría resolver: conflictos de serialización,
// deadlocks, caídas del servidor y fallas de conexión.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", pgErr.Code == "40P01": // serialization_failure, deadlock_detected
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P03": // admin_shutdown, cannot_connect_now
			return true
		case strings.HasPrefix(pgErr.Code, "08"): // connection_exception
			return true
		}
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

// wrapStoreErr clasifica errores del driver: los transitorios se envuelven con domain.ErrTransientStore.
// Los errores de contexto se devuelven tal cual.
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransientStore, err)
	}
	if isInvalidText(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
