package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"./examples"}, cfg.Inputs.Paths)
	assert.InDelta(t, 0.3, cfg.Analysis.MinStrength, 1e-9)
	assert.Equal(t, 5, cfg.Analysis.MaxTouchpoints)
	assert.Equal(t, "archlens.db", cfg.Storage.Path)
	assert.Empty(t, cfg.AI.Provider)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
analysis:
  min_strength: 0.5
  parallelism: 2
  emitter_keywords: [fire, launch]
storage:
  path: /tmp/history.db
ai:
  provider: gemini
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.Analysis.MinStrength, 1e-9)
	assert.Equal(t, 2, cfg.Analysis.Parallelism)
	assert.Equal(t, []string{"fire", "launch"}, cfg.Analysis.EmitterKeywords)
	assert.Equal(t, "/tmp/history.db", cfg.Storage.Path)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	// Untouched sections keep their defaults.
	assert.Equal(t, []string{"./examples"}, cfg.Inputs.Paths)
	assert.Equal(t, 5, cfg.Analysis.MaxTouchpoints)
}

func TestLoadConfig_EnvWinsLast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  provider: gemini\n  api_key: from-yaml\n"), 0o644))

	t.Setenv("ARCHLENS_API_KEY", "from-env")
	t.Setenv("ARCHLENS_AI_PROVIDER", "none")
	t.Setenv("ARCHLENS_DB", "env.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.Equal(t, "env.db", cfg.Storage.Path)
}

func TestLoadConfig_MalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [not, a, mapping"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
