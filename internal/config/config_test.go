package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "./data/ghostdesk.db", cfg.Database.Path)
	assert.Equal(t, "./data/price-reference.xlsx", cfg.Catalog.Path)
	assert.Equal(t, "./prompts", cfg.Prompts.Dir)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 9090
catalog:
  path: /srv/prices.xlsx
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
	assert.Equal(t, "/srv/prices.xlsx", cfg.Catalog.Path)
	// Unset keys keep their defaults
	assert.Equal(t, "./data/ghostdesk.db", cfg.Database.Path)
}
