package httpapi

import (
	"errors"
	"net/url"

	"github.com/wayfarerhq/pilot/pkg/models"
)

var validProviders = map[models.AgentProvider]bool{
	models.ProviderGemini:     true,
	models.ProviderPerplexity: true,
	models.ProviderHF:         true,
}

// validateAgentRequest enforces the bit-exact AgentRequest schema: a
// non-empty task, an http(s) URL with a host, and a known provider.
func validateAgentRequest(req *models.AgentRequest) error {
	if req.Task == "" {
		return errors.New("task must not be empty")
	}
	if !validProviders[req.Provider] {
		return errors.New("provider must be one of: gemini, perplexity, hf")
	}
	parsed, err := url.Parse(req.URL)
	if err != nil {
		return errors.New("url is not a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url must use the http or https scheme")
	}
	if parsed.Host == "" {
		return errors.New("url must have a non-empty host")
	}
	return nil
}
