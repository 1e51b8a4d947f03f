package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
providers:
  active: anthropic
  llms:
    anthropic:
      type: anthropic
      model: claude-sonnet-4
      api_key: ${TEST_API_KEY:-sk-default}
store:
  driver: sqlite
  dsn: ":memory:"
orchestrator:
  max_steps: 10
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaultsAndEnvExpansion(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Providers.Active)
	assert.Equal(t, "sk-default", cfg.Providers.LLMs["anthropic"].APIKey)
	assert.Equal(t, 4096, cfg.Providers.LLMs["anthropic"].MaxTokens)
	assert.Equal(t, 10, cfg.Orchestrator.MaxSteps)
	assert.Equal(t, 3, cfg.Orchestrator.MaxToolRounds)
}

func TestLoadHonorsEnvVarOverride(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	t.Setenv("TEST_API_KEY", "sk-real")
	t.Setenv("AGENT_MAX_STEPS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-real", cfg.Providers.LLMs["anthropic"].APIKey)
	assert.Equal(t, 7, cfg.Orchestrator.MaxSteps)
}

func TestValidateRejectsUnknownActiveProvider(t *testing.T) {
	path := writeTemp(t, `
providers:
  active: missing
  llms:
    anthropic:
      type: anthropic
      model: claude-sonnet-4
store:
  driver: sqlite
  dsn: ":memory:"
`)
	_, err := Load(path)
	require.Error(t, err)
}
