package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "nexus.yaml", `
browser_agent:
  host: 0.0.0.0
  extra: true
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, "nexus.yaml", `
browser_agent:
  host: 127.0.0.1
  port: 9000
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BrowserAgent.Host != "127.0.0.1" {
		t.Fatalf("expected host override, got %q", cfg.BrowserAgent.Host)
	}
	if cfg.BrowserAgent.Port != 9000 {
		t.Fatalf("expected port override, got %d", cfg.BrowserAgent.Port)
	}
	// Unset sections still get their defaults applied.
	if cfg.BrowserAgent.RateLimits.AgentPerMinute != 5 {
		t.Fatalf("expected default rate limit, got %d", cfg.BrowserAgent.RateLimits.AgentPerMinute)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "nexus.yaml", `
browser_agent: {}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("expected default logging config, got %+v", cfg.Logging)
	}
	if cfg.Tracing.ServiceName != "pilot" {
		t.Fatalf("expected default tracing service name, got %q", cfg.Tracing.ServiceName)
	}
}

func TestLoadValidatesLoggingLevel(t *testing.T) {
	path := writeConfig(t, "nexus.yaml", `
logging:
  level: noisy
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging.level error, got %v", err)
	}
}

func TestLoadValidatesRateLimits(t *testing.T) {
	path := writeConfig(t, "nexus.yaml", `
browser_agent:
  rate_limits:
    agent_per_minute: -1
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "rate_limits.agent_per_minute") {
		t.Fatalf("expected rate_limits.agent_per_minute error, got %v", err)
	}
}

func TestLoadValidatesTracingSamplingRate(t *testing.T) {
	path := writeConfig(t, "nexus.yaml", `
tracing:
  sampling_rate: 1.5
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "tracing.sampling_rate") {
		t.Fatalf("expected tracing.sampling_rate error, got %v", err)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("PILOT_TEST_HOST", "10.0.0.5")

	path := writeConfig(t, "nexus.yaml", `
browser_agent:
  host: "${PILOT_TEST_HOST}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BrowserAgent.Host != "10.0.0.5" {
		t.Fatalf("expected expanded host, got %q", cfg.BrowserAgent.Host)
	}
}

func TestLoadResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.yaml")
	if err := os.WriteFile(basePath, []byte("browser_agent:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	mainPath := filepath.Join(dir, "nexus.yaml")
	contents := "$include: base.yaml\nlogging:\n  level: debug\n"
	if err := os.WriteFile(mainPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(mainPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BrowserAgent.Port != 9100 {
		t.Fatalf("expected included port, got %d", cfg.BrowserAgent.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected overriding logging level, got %q", cfg.Logging.Level)
	}
}

func TestLoadAcceptsJSON5(t *testing.T) {
	path := writeConfig(t, "nexus.json5", `{
  // trailing commas and comments are fine in json5
  browser_agent: {
    port: 9200,
  },
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BrowserAgent.Port != 9200 {
		t.Fatalf("expected port from json5 config, got %d", cfg.BrowserAgent.Port)
	}
}

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}
