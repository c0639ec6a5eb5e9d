package httpapi

import (
	"testing"

	"github.com/wayfarerhq/pilot/pkg/models"
)

func TestValidateAgentRequestRejectsEmptyTask(t *testing.T) {
	req := &models.AgentRequest{URL: "https://example.com", Provider: models.ProviderGemini}
	if err := validateAgentRequest(req); err == nil {
		t.Fatal("expected an error for empty task")
	}
}

func TestValidateAgentRequestRejectsUnknownProvider(t *testing.T) {
	req := &models.AgentRequest{Task: "click", URL: "https://example.com", Provider: "claude"}
	if err := validateAgentRequest(req); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestValidateAgentRequestRejectsNonHTTPScheme(t *testing.T) {
	req := &models.AgentRequest{Task: "click", URL: "ftp://example.com", Provider: models.ProviderGemini}
	if err := validateAgentRequest(req); err == nil {
		t.Fatal("expected an error for a non-http(s) scheme")
	}
}

func TestValidateAgentRequestRejectsMissingHost(t *testing.T) {
	req := &models.AgentRequest{Task: "click", URL: "https://", Provider: models.ProviderGemini}
	if err := validateAgentRequest(req); err == nil {
		t.Fatal("expected an error for a missing host")
	}
}

func TestValidateAgentRequestAcceptsValidRequest(t *testing.T) {
	req := &models.AgentRequest{Task: "click login", URL: "https://example.com/login", Provider: models.ProviderHF}
	if err := validateAgentRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
