// Package config loads and validates the orchestration core's configuration:
// LLM provider settings, the persistence backend, and orchestrator tunables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration value for one kaziaid process.
type Config struct {
	Providers    ProvidersConfig    `yaml:"providers"`
	Store        StoreConfig        `yaml:"store"`
	Memory       MemoryConfig       `yaml:"memory"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// ProvidersConfig holds one LLMProviderConfig per named provider plus which
// one is active (overridable by the LLM_PROVIDER env var at load time).
type ProvidersConfig struct {
	Active string                       `yaml:"active"`
	LLMs   map[string]LLMProviderConfig `yaml:"llms"`
}

// LLMProviderConfig configures a single LLM adapter instance.
type LLMProviderConfig struct {
	Type        string        `yaml:"type"` // anthropic | openai | groq | deepseek | ollama
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StoreConfig selects and configures the trace/goal/negotiation persistence
// backend. Driver is one of "sqlite", "mysql", "postgres".
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// MemoryConfig configures the episodic memory store. An empty PersistPath
// keeps memories in-process only (lost on restart).
type MemoryConfig struct {
	PersistPath string `yaml:"persist_path"`
}

// OrchestratorConfig carries the tunables named in spec.md §6's environment
// variable list.
type OrchestratorConfig struct {
	MaxSteps      int `yaml:"max_steps"`       // AGENT_MAX_STEPS, default 15
	MaxToolRounds int `yaml:"max_tool_rounds"` // MAX_TOOL_ROUNDS, default 3
	MaxRetries    int `yaml:"max_retries"`     // tool retry attempts, default 2
	MaxDelegation int `yaml:"max_delegation"`  // default 5; defaulted and validated only, the enforced cap is toolkit.MaxDelegations
}

// TelemetryConfig configures the tracer/meter exporters.
type TelemetryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ServiceName    string `yaml:"service_name"`
	PrometheusAddr string `yaml:"prometheus_addr"`
	TraceExporter  string `yaml:"trace_exporter"` // "stdout" | "none"
}

// SetDefaults fills unset fields with the core's defaults, cascading into
// every nested section. It never overwrites an already-set value.
func (c *Config) SetDefaults() {
	c.Providers.SetDefaults()
	c.Store.SetDefaults()
	c.Memory.SetDefaults()
	c.Orchestrator.SetDefaults()
	c.Telemetry.SetDefaults()
}

// SetDefaults leaves MemoryConfig's zero value (in-memory only) untouched;
// there is no sensible default persist path to invent.
func (m *MemoryConfig) SetDefaults() {}

func (p *ProvidersConfig) SetDefaults() {
	if p.Active == "" {
		p.Active = "anthropic"
	}
	if p.LLMs == nil {
		p.LLMs = map[string]LLMProviderConfig{}
	}
	for name, cfg := range p.LLMs {
		cfg.SetDefaults()
		p.LLMs[name] = cfg
	}
}

func (l *LLMProviderConfig) SetDefaults() {
	if l.Temperature == 0 {
		l.Temperature = 0.7
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = 4096
	}
	if l.Timeout == 0 {
		l.Timeout = 60 * time.Second
	}
}

func (s *StoreConfig) SetDefaults() {
	if s.Driver == "" {
		s.Driver = "sqlite"
	}
	if s.DSN == "" && s.Driver == "sqlite" {
		s.DSN = "kaziai.db"
	}
}

func (o *OrchestratorConfig) SetDefaults() {
	if o.MaxSteps == 0 {
		o.MaxSteps = 15
	}
	if o.MaxToolRounds == 0 {
		o.MaxToolRounds = 3
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 2
	}
	if o.MaxDelegation == 0 {
		o.MaxDelegation = 5
	}
}

func (t *TelemetryConfig) SetDefaults() {
	if t.ServiceName == "" {
		t.ServiceName = "kaziai-core"
	}
	if t.TraceExporter == "" {
		t.TraceExporter = "stdout"
	}
}

// Validate checks the whole config after defaults have been applied.
func (c *Config) Validate() error {
	if err := c.Providers.Validate(); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Orchestrator.Validate(); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	return nil
}

func (p *ProvidersConfig) Validate() error {
	if _, ok := p.LLMs[p.Active]; !ok {
		return fmt.Errorf("active provider %q has no configuration", p.Active)
	}
	for name, cfg := range p.LLMs {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("llm %q: %w", name, err)
		}
	}
	return nil
}

func (l *LLMProviderConfig) Validate() error {
	switch l.Type {
	case "anthropic", "openai", "groq", "deepseek", "ollama":
	default:
		return fmt.Errorf("unknown provider type %q", l.Type)
	}
	if l.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

func (s *StoreConfig) Validate() error {
	switch s.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unknown driver %q", s.Driver)
	}
	if s.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	return nil
}

func (o *OrchestratorConfig) Validate() error {
	if o.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive")
	}
	if o.MaxToolRounds <= 0 {
		return fmt.Errorf("max_tool_rounds must be positive")
	}
	if o.MaxDelegation <= 0 {
		return fmt.Errorf("max_delegation must be positive")
	}
	return nil
}
