package config

import (
	"os"
	"regexp"
	"strconv"
)

var (
	envWithDefault = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`)
	envBraced      = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	envSimple      = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// expandEnvVars expands $VAR, ${VAR} and ${VAR:-default} references in s.
// Order matters: the most specific pattern must run first so a bare ${VAR}
// regex doesn't also swallow the ":-default" tail.
func expandEnvVars(s string) string {
	s = envWithDefault.ReplaceAllStringFunc(s, func(match string) string {
		parts := envWithDefault.FindStringSubmatch(match)
		if val := os.Getenv(parts[1]); val != "" {
			return val
		}
		return parts[2]
	})
	s = envBraced.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envBraced.FindStringSubmatch(match)[1])
	})
	s = envSimple.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envSimple.FindStringSubmatch(match)[1])
	})
	return s
}

// applyEnvOverrides applies the four environment variables spec.md §6 names,
// plus the store-selection pair this module adds, on top of a loaded config.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.Providers.Active = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		if cfg, ok := c.Providers.LLMs[c.Providers.Active]; ok {
			cfg.Model = v
			c.Providers.LLMs[c.Providers.Active] = cfg
		}
	}
	if v := os.Getenv("AGENT_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Orchestrator.MaxSteps = n
		}
	}
	if v := os.Getenv("MAX_TOOL_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Orchestrator.MaxToolRounds = n
		}
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Store.DSN = v
	}
}
