package llms

import (
	"testing"
	"time"

	"github.com/kaziai/core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuildsConfiguredProviders(t *testing.T) {
	cfg := config.ProvidersConfig{
		Active: "anthropic",
		LLMs: map[string]config.LLMProviderConfig{
			"anthropic": {Type: "anthropic", Model: "claude-sonnet-4", Timeout: time.Second},
			"ollama":    {Type: "ollama", Model: "llama3", Timeout: time.Second},
			"groq":      {Type: "groq", Model: "llama-3.3-70b", Timeout: time.Second},
		},
	}

	r, err := NewRegistry(cfg)
	require.NoError(t, err)

	active, err := r.Active(cfg)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", active.Name())

	ollama, ok := r.Get("ollama")
	require.True(t, ok)
	assert.Equal(t, "ollama", ollama.Name())
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	cfg := config.ProvidersConfig{
		LLMs: map[string]config.LLMProviderConfig{"x": {Type: "bogus", Model: "m"}},
	}
	_, err := NewRegistry(cfg)
	assert.Error(t, err)
}

func TestFakeProviderScriptedSequence(t *testing.T) {
	fake := &FakeProvider{Responses: []FakeResponse{
		{Text: "thinking", ToolCalls: []ToolCall{{ID: "1", Name: "search", Arguments: `{"q":"go jobs"}`}}},
		{Text: "FINAL_ANSWER: done"},
	}}

	_, calls, _, err := fake.Generate(nil, nil)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "search", calls[0].Name)

	text, calls, _, err := fake.Generate(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, calls)
	assert.Contains(t, text, "FINAL_ANSWER")
}
