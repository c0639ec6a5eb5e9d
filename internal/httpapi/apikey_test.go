package httpapi

import (
	"testing"

	"github.com/wayfarerhq/pilot/pkg/models"
)

func TestResolveAPIKeyPrefersHeaderOverBodyAndEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	got, err := resolveAPIKey("header-key", "body-key", models.ProviderGemini, map[string]string{"gemini": "GEMINI_API_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "header-key" {
		t.Fatalf("got %q, want header-key", got)
	}
}

func TestResolveAPIKeyFallsBackToBody(t *testing.T) {
	got, err := resolveAPIKey("", "body-key", models.ProviderGemini, map[string]string{"gemini": "GEMINI_API_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "body-key" {
		t.Fatalf("got %q, want body-key", got)
	}
}

func TestResolveAPIKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	got, err := resolveAPIKey("", "", models.ProviderGemini, map[string]string{"gemini": "GEMINI_API_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "env-key" {
		t.Fatalf("got %q, want env-key", got)
	}
}

func TestResolveAPIKeyErrorsWhenNoneAvailable(t *testing.T) {
	_, err := resolveAPIKey("", "", models.ProviderPerplexity, map[string]string{"perplexity": "PERPLEXITY_API_KEY"})
	if err == nil {
		t.Fatal("expected an error when no key is available")
	}
}

func TestMaskAPIKeyShowsOnlyEnds(t *testing.T) {
	got := maskAPIKey("sk-1234567890abcdef")
	if got != "sk-1...cdef" {
		t.Fatalf("got %q", got)
	}
	if maskAPIKey("short") != "*****" {
		t.Fatalf("expected fully masked short key, got %q", maskAPIKey("short"))
	}
}
