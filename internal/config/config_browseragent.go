package config

import "time"

// BrowserAgentConfig configures the browser-automation agent HTTP surface:
// bind address, CORS, per-endpoint rate limits, and the defaults applied to
// an AgentRequest that doesn't override them.
type BrowserAgentConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// CORSOrigins lists allowed Origin values for the agent API. Empty
	// means no CORS headers are sent.
	CORSOrigins []string `yaml:"cors_origins"`

	RateLimits BrowserAgentRateLimits `yaml:"rate_limits"`

	DefaultMaxSteps int           `yaml:"default_max_steps"`
	DefaultTimeout  time.Duration `yaml:"default_timeout"`
	DefaultHeadless bool          `yaml:"default_headless"`

	// ProviderAPIKeyEnv maps a provider name (gemini, perplexity, hf) to the
	// environment variable consulted when neither the request header nor
	// the request body carries an API key.
	ProviderAPIKeyEnv map[string]string `yaml:"provider_api_key_env"`
}

// BrowserAgentRateLimits holds the requests-per-minute ceiling for each
// class of agent endpoint.
type BrowserAgentRateLimits struct {
	AgentPerMinute   int `yaml:"agent_per_minute"`
	CodegenPerMinute int `yaml:"codegen_per_minute"`
	OtherPerMinute   int `yaml:"other_per_minute"`
}

// DefaultBrowserAgentConfig returns the documented defaults, applied by the
// loader when the browser_agent section (or individual fields within it) is
// absent from the config file.
func DefaultBrowserAgentConfig() BrowserAgentConfig {
	return BrowserAgentConfig{
		Host: "0.0.0.0",
		Port: 8090,
		RateLimits: BrowserAgentRateLimits{
			AgentPerMinute:   5,
			CodegenPerMinute: 20,
			OtherPerMinute:   60,
		},
		DefaultMaxSteps: 30,
		DefaultTimeout:  300 * time.Second,
		DefaultHeadless: true,
		ProviderAPIKeyEnv: map[string]string{
			"gemini":     "GEMINI_API_KEY",
			"perplexity": "PERPLEXITY_API_KEY",
			"hf":         "HUGGINGFACE_API_KEY",
		},
	}
}

// WithDefaults fills zero-value fields with DefaultBrowserAgentConfig's
// values; DefaultHeadless is left as given, so a false value is kept.
// Called by internal/httpapi at server construction, since this
// section is consumed outside package config and needs its defaults
// resolved before use rather than inline at every read site.
func (c BrowserAgentConfig) WithDefaults() BrowserAgentConfig {
	d := DefaultBrowserAgentConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.RateLimits.AgentPerMinute == 0 {
		c.RateLimits.AgentPerMinute = d.RateLimits.AgentPerMinute
	}
	if c.RateLimits.CodegenPerMinute == 0 {
		c.RateLimits.CodegenPerMinute = d.RateLimits.CodegenPerMinute
	}
	if c.RateLimits.OtherPerMinute == 0 {
		c.RateLimits.OtherPerMinute = d.RateLimits.OtherPerMinute
	}
	if c.DefaultMaxSteps == 0 {
		c.DefaultMaxSteps = d.DefaultMaxSteps
	}
	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = d.DefaultTimeout
	}
	if c.ProviderAPIKeyEnv == nil {
		c.ProviderAPIKeyEnv = d.ProviderAPIKeyEnv
	}
	return c
}
