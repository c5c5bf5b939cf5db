package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG_FILE", "DATABASE_URL", "PORT", "JWT_SECRET", "REDIS_URL", "LOG_LEVEL", "CURRENCY_EXPONENT", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	clearEnv(t)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://localhost/splitsettle
port: "9000"
currency_exponent: 3
shutdown_timeout: 5s
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/splitsettle", cfg.DatabaseURL)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, int32(3), cfg.CurrencyExponent)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_InvalidExponent(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)
	t.Setenv("CURRENCY_EXPONENT", "12")

	_, err := Load()
	assert.Error(t, err)
}
