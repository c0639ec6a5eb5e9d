package config

import (
	"strings"
)

// Config is the top-level configuration for the pilot agent server. It
// covers exactly the sections the browser-agent HTTP surface and its
// ambient logging/tracing need; there is no multi-channel, plugin, or
// persistence configuration here because nothing in this binary loads it.
type Config struct {
	BrowserAgent BrowserAgentConfig `yaml:"browser_agent"`
	Logging      LoggingConfig      `yaml:"logging"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

// Load reads a YAML or JSON5 configuration file, resolving `$include`
// directives and expanding environment variables, then applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, err
	}

	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.BrowserAgent = cfg.BrowserAgent.WithDefaults()
	applyLoggingDefaults(&cfg.Logging)
	applyTracingDefaults(&cfg.Tracing)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
}

func applyTracingDefaults(cfg *TracingConfig) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "pilot"
	}
	if cfg.SamplingRate == 0 {
		cfg.SamplingRate = 1.0
	}
}

type ConfigValidationError struct {
	Issues []string
}

func (e *ConfigValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var issues []string

	if cfg.BrowserAgent.Port < 0 || cfg.BrowserAgent.Port > 65535 {
		issues = append(issues, "browser_agent.port must be between 0 and 65535")
	}
	if cfg.BrowserAgent.RateLimits.AgentPerMinute < 0 {
		issues = append(issues, "browser_agent.rate_limits.agent_per_minute must be >= 0")
	}
	if cfg.BrowserAgent.RateLimits.CodegenPerMinute < 0 {
		issues = append(issues, "browser_agent.rate_limits.codegen_per_minute must be >= 0")
	}
	if cfg.BrowserAgent.RateLimits.OtherPerMinute < 0 {
		issues = append(issues, "browser_agent.rate_limits.other_per_minute must be >= 0")
	}
	if cfg.BrowserAgent.DefaultMaxSteps < 0 {
		issues = append(issues, "browser_agent.default_max_steps must be >= 0")
	}
	if cfg.BrowserAgent.DefaultTimeout < 0 {
		issues = append(issues, "browser_agent.default_timeout must be >= 0")
	}

	if !validLogLevel(cfg.Logging.Level) {
		issues = append(issues, "logging.level must be \"debug\", \"info\", \"warn\", or \"error\"")
	}
	if !validLogFormat(cfg.Logging.Format) {
		issues = append(issues, "logging.format must be \"json\" or \"text\"")
	}

	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		issues = append(issues, "tracing.sampling_rate must be between 0 and 1")
	}

	if len(issues) > 0 {
		return &ConfigValidationError{Issues: issues}
	}

	return nil
}

func validLogLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validLogFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "text":
		return true
	default:
		return false
	}
}
