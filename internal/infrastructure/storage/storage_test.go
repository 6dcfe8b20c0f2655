package storage

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vivero-api/pkg/config"
)

func TestOpen_Memoria(t *testing.T) {
	repos, closeFn, err := Open(context.Background(), config.DBConfig{Driver: "memory"}, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()
	require.NotNil(t, repos.Memory)
	assert.NotNil(t, repos.Tx)
	assert.NotNil(t, repos.Items)
	assert.NotNil(t, repos.Plants)

	tenants, err := repos.Tenants.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, _, err := Open(context.Background(), config.DBConfig{Driver: "sqlite"}, zerolog.Nop())
	assert.Error(t, err)
}
