package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
rate_limit:
  requests_per_window: 10
entitlement:
  default_limit: 250
  plans:
    solo: 100
    agency: 0
`)

	cfg, err := Load("production", path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Mode)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 250, cfg.Entitlement.DefaultLimit)
	assert.Equal(t, 100, cfg.Entitlement.Plans["solo"])
	assert.Equal(t, 0, cfg.Entitlement.Plans["agency"])
	assert.Equal(t, 300, cfg.Entitlement.TimestampSkew)
	assert.Same(t, cfg, Get())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPlansFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid table", func(t *testing.T) {
		path := writeFile(t, dir, "plans.yaml", `
plans:
  - name: Solo
    limit: 500
  - name: studio
    unlimited: true
`)
		plans, err := LoadPlansFile(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"solo": 500, "studio": 0}, plans)
	})

	t.Run("non positive limit is rejected", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", `
plans:
  - name: solo
    limit: 0
`)
		_, err := LoadPlansFile(path)
		assert.Error(t, err)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		path := writeFile(t, dir, "noname.yaml", `
plans:
  - limit: 5
`)
		_, err := LoadPlansFile(path)
		assert.Error(t, err)
	})
}
