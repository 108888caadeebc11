package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("data", "raw"), cfg.RawDataDir)
	assert.Equal(t, filepath.Join("data", "prepared"), cfg.PreparedDataDir)
	assert.Equal(t, filepath.Join("data", "olap_cubing_outputs"), cfg.CubeOutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	require.NotNil(t, cfg.Warehouse)
	assert.Equal(t, DriverSQLite, cfg.Warehouse.Driver)
	assert.Equal(t, filepath.Join("data", "dw", "smart_store_dw.db"), cfg.Warehouse.SQLitePath)
	assert.Equal(t, 300*time.Second, cfg.Warehouse.StatementTimeout)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/analytics")
	t.Setenv("RAW_DATA_DIR", "/srv/incoming")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WAREHOUSE_MAX_OPEN_CONNS", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/srv/incoming", cfg.RawDataDir)
	assert.Equal(t, filepath.Join("/srv/analytics", "prepared"), cfg.PreparedDataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join("/srv/analytics", "dw", "smart_store_dw.db"), cfg.Warehouse.SQLitePath)
	assert.Equal(t, 10, cfg.Warehouse.MaxOpenConns)
}

func TestLoadConfigPostgresRequiresCredentials(t *testing.T) {
	t.Setenv("WAREHOUSE_DRIVER", DriverPostgres)

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("WAREHOUSE_USER", "dw")
	t.Setenv("WAREHOUSE_PASSWORD", "secret")
	t.Setenv("WAREHOUSE_DB", "smart_store")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Warehouse.Driver)
	assert.Contains(t, cfg.Warehouse.ConnectionString(), "dbname=smart_store")
	assert.Contains(t, cfg.Warehouse.ConnectionString(), "sslmode=disable")
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("WAREHOUSE_DRIVER", "oracle")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("WAREHOUSE_PORT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Warehouse.Port)
}
