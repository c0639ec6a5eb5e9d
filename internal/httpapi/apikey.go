package httpapi

import (
	"fmt"
	"os"
	"strings"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// apiKeyError reports a missing or unresolvable API key. Handlers surface it
// as HTTP 401.
type apiKeyError struct {
	provider models.AgentProvider
	envVar   string
}

func (e *apiKeyError) Error() string {
	envVar := e.envVar
	if envVar == "" {
		envVar = strings.ToUpper(string(e.provider)) + "_API_KEY"
	}
	return fmt.Sprintf(
		"API key required for %s. Provide via X-API-Key header, apiKey in body, or set %s environment variable.",
		e.provider, envVar,
	)
}

// resolveAPIKey implements the documented priority order: header, then
// request body, then the provider's environment variable.
func resolveAPIKey(headerKey, bodyKey string, provider models.AgentProvider, envNames map[string]string) (string, error) {
	if headerKey != "" {
		return headerKey, nil
	}
	if bodyKey != "" {
		return bodyKey, nil
	}
	if envVar, ok := envNames[string(provider)]; ok {
		if v := os.Getenv(envVar); v != "" {
			return v, nil
		}
	}
	return "", &apiKeyError{provider: provider, envVar: envNames[string(provider)]}
}

// maskAPIKey returns a partially-redacted form of a key suitable for log
// lines, showing only its first and last four characters.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}
