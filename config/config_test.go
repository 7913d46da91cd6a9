package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Pricing.Retention)
	assert.True(t, cfg.Pricing.RefreshOnCarry)
	assert.Equal(t, "prices.json", cfg.Pricing.ExportFilename)
	assert.Equal(t, "memory", cfg.Database.Mode)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 15*time.Second, cfg.Source.FetchTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
source:
  inventory: https://example.org/inventory.json
  reload_interval: 0s
  legacy_id_lookup: true
pricing:
  retention: 72h
  refresh_on_carry: false
cache:
  redis_addr: 127.0.0.1:6379
`))
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/inventory.json", cfg.Source.Inventory)
	assert.Zero(t, cfg.Source.ReloadInterval)
	assert.True(t, cfg.Source.LegacyIDLookup)
	assert.Equal(t, 72*time.Hour, cfg.Pricing.Retention)
	assert.False(t, cfg.Pricing.RefreshOnCarry)
	assert.Equal(t, "127.0.0.1:6379", cfg.Cache.RedisAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20.0, cfg.Security.RateLimitRPS)
}
