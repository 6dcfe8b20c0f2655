package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, time.Hour, cfg.Notify.Interval)
	assert.Equal(t, 30*time.Second, cfg.Notify.TenantTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Notify.DedupWindow)
	assert.Equal(t, 4, cfg.Notify.Workers)
	assert.False(t, cfg.Inventory.AllowNegativeStock)
	assert.True(t, cfg.Inventory.WeightedCost)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("NOTIFY_INTERVAL", "0")
	t.Setenv("NOTIFY_TENANT_TIMEOUT", "5s")
	t.Setenv("NOTIFY_WORKERS", "8")
	t.Setenv("INVENTORY_ALLOW_NEGATIVE_STOCK", "true")
	t.Setenv("CRON_SECRET", "s3cr3t")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Notify.Interval)
	assert.Equal(t, 5*time.Second, cfg.Notify.TenantTimeout)
	assert.Equal(t, 8, cfg.Notify.Workers)
	assert.True(t, cfg.Inventory.AllowNegativeStock)
	assert.Equal(t, "s3cr3t", cfg.HTTP.CronSecret)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "vivero", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/vivero?sslmode=disable", c.DSN())
}

func TestLoad_Pool(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("APP_NAME", "vivero-test")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_MIN_CONNS", "6")

	_, err := Load()
	assert.Error(t, err, "min > max")

	t.Setenv("DB_MIN_CONNS", "2")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(4), cfg.DB.MaxConns)
	assert.Equal(t, int32(2), cfg.DB.MinConns)
	assert.True(t, cfg.DB.ForceIPv4)
	assert.Equal(t, "vivero-test", cfg.DB.ApplicationName)
}
