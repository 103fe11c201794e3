package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.ImportPerPage)
	assert.Equal(t, "storage", cfg.StoragePath)
	assert.Equal(t, "", cfg.KafkaBrokers)
	assert.Equal(t, "8080", cfg.APIPort)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("IMPORT_PER_PAGE", "50")
	t.Setenv("STORAGE_PATH", "/var/lib/karaz/media")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.ImportPerPage)
	assert.Equal(t, "/var/lib/karaz/media", cfg.StoragePath)
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("IMPORT_PER_PAGE", "plenty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.ImportPerPage)
}
