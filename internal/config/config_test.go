package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sluice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
admin:
  address: ops
  api_key: hunter2
redis:
  addr: localhost:6379
journal:
  path: /var/lib/sluice/journal.db
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ops", string(cfg.Admin.Address))
	assert.Equal(t, "hunter2", cfg.Admin.APIKey)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "/var/lib/sluice/journal.db", cfg.Journal.Path)

	// Untouched sections keep their defaults.
	assert.Equal(t, "sluice", string(cfg.Router.Address))
	assert.Equal(t, ":8372", cfg.Server.Addr)
	assert.Equal(t, "sluice:", cfg.Redis.Prefix)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("admin address required", func(t *testing.T) {
		path := writeConfig(t, `
admin:
  address: ""
`)
		_, err := config.Load(path)
		assert.ErrorContains(t, err, "admin.address")
	})

	t.Run("admin and router must differ", func(t *testing.T) {
		path := writeConfig(t, `
admin:
  address: same
router:
  address: same
`)
		_, err := config.Load(path)
		assert.ErrorContains(t, err, "must differ")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "log_level: [")
		_, err := config.Load(path)
		assert.ErrorContains(t, err, "parse config")
	})
}
