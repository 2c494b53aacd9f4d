package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-ledger/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.StorageDriver)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, "fifo", cfg.Ledger.ValuationPolicy)
	assert.Equal(t, "@every 1h", cfg.Worker.ReconcileCron)
	assert.Equal(t, 30*time.Second, cfg.Redis.DashboardTTL())
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("LEDGER_MAX_RETRIES", "5")
	t.Setenv("LEDGER_VALUATION_POLICY", "average")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, "average", cfg.Ledger.ValuationPolicy)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "almacen", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/almacen?sslmode=disable", c.DSN())
}

func TestLoad_SinReintentosEsValido(t *testing.T) {
	t.Setenv("LEDGER_MAX_RETRIES", "0")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Zero(t, cfg.Ledger.MaxRetries)
}

func TestLoad_ReintentosNegativos(t *testing.T) {
	t.Setenv("LEDGER_MAX_RETRIES", "-1")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestJWTConfig_ValidateExigeSecreto(t *testing.T) {
	assert.Error(t, config.JWTConfig{}.Validate())
	assert.NoError(t, config.JWTConfig{Secret: "s3cr3t"}.Validate())
}
