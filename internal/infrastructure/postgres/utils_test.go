package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/vivero-api/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestWrapStoreErr_Transitorios(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "57P01", "08006"} {
		err := wrapStoreErr("op", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrTransientStore, code)
	}
}

func TestWrapStoreErr_NoTransitorio(t *testing.T) {
	err := wrapStoreErr("op", &pgconn.PgError{Code: "23503"})
	assert.NotErrorIs(t, err, domain.ErrTransientStore)
	assert.Error(t, err)
}

func TestWrapStoreErr_IDMalFormadoEsNotFound(t *testing.T) {
	err := wrapStoreErr("get item", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrTransientStore)
}

func TestValidIDs(t *testing.T) {
	assert.True(t, validIDs("00000000-0000-4000-8000-000000000001", "6f1c1e36-3b0a-4c55-9d3e-0b8f0e1f2a33"))
	assert.True(t, validIDs())
	assert.False(t, validIDs("00000000-0000-4000-8000-000000000001", "abc"))
	assert.False(t, validIDs(""))
}

func TestListByTaskQuery_OrdenDeInsercion(t *testing.T) {
	assert.Contains(t, listByTaskQuery, "ORDER BY fecha ASC, orden ASC")
	assert.Contains(t, schemaSQL, "orden            BIGINT GENERATED ALWAYS AS IDENTITY")
}

func TestWrapStoreErr_Contexto(t *testing.T) {
	err := wrapStoreErr("op", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.NotErrorIs(t, err, domain.ErrTransientStore)
	assert.NoError(t, wrapStoreErr("op", nil))
}

func TestWithIPv4Host(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "postgres://u:p@127.0.0.1:5432/vivero?sslmode=disable",
		withIPv4Host(ctx, "postgres://u:p@127.0.0.1/vivero?sslmode=disable"), "agrega puerto por defecto")
	assert.Equal(t, "postgres://u:p@[::1]:5432/vivero", withIPv4Host(ctx, "postgres://u:p@[::1]:5432/vivero"), "IPv6 literal se deja igual")
	assert.Equal(t, "host=db user=x", withIPv4Host(ctx, "host=db user=x"), "DSN clave=valor no se toca")
}
