package llms

import (
	"fmt"

	"github.com/kaziai/core/internal/config"
	"github.com/kaziai/core/registry"
)

// Registry resolves configured provider names to live Provider instances.
type Registry struct {
	base *registry.BaseRegistry[Provider]
}

// NewRegistry builds a provider for every entry in cfg.LLMs and registers it
// under its configured name.
func NewRegistry(cfg config.ProvidersConfig) (*Registry, error) {
	r := &Registry{base: registry.NewBaseRegistry[Provider]()}
	for name, providerCfg := range cfg.LLMs {
		provider, err := build(providerCfg)
		if err != nil {
			return nil, fmt.Errorf("llms: building provider %q: %w", name, err)
		}
		if err := r.base.Register(name, provider); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func build(cfg config.LLMProviderConfig) (Provider, error) {
	switch cfg.Type {
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	case "openai", "groq", "deepseek":
		return NewOpenAICompatProvider(cfg), nil
	default:
		return nil, fmt.Errorf("llms: unknown provider type %q", cfg.Type)
	}
}

// Get resolves a configured provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	return r.base.Get(name)
}

// Active resolves the configured active provider.
func (r *Registry) Active(cfg config.ProvidersConfig) (Provider, error) {
	p, ok := r.Get(cfg.Active)
	if !ok {
		return nil, fmt.Errorf("llms: active provider %q not registered", cfg.Active)
	}
	return p, nil
}
