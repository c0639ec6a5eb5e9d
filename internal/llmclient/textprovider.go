package llmclient

import (
	"fmt"
	"strings"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// renderToolListing formats tool definitions as the flat "name(params):
// description" listing the text protocol's system prompt expects.
func renderToolListing(tools []models.ToolDefinition) string {
	var b strings.Builder
	for _, t := range tools {
		params := make([]string, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			if p.Required {
				params = append(params, p.Name)
			} else {
				params = append(params, p.Name+"?")
			}
		}
		fmt.Fprintf(&b, "- %s(%s): %s\n", t.Name, strings.Join(params, ", "), t.Description)
	}
	return b.String()
}

// injectToolsPrompt appends the TOOL_CALL/ARGUMENTS protocol instructions and
// tool listing to the system message, for providers without native
// function-calling. If there is no system message one is created.
func injectToolsPrompt(messages []models.LLMMessage, tools []models.ToolDefinition) []models.LLMMessage {
	if len(tools) == 0 {
		return messages
	}
	prompt := ToolsPrompt(renderToolListing(tools))

	out := make([]models.LLMMessage, len(messages))
	copy(out, messages)

	for i := range out {
		if out[i].Role == models.LLMRoleSystem {
			out[i].Content = strings.TrimSpace(out[i].Content + "\n\n" + prompt)
			return out
		}
	}
	return append([]models.LLMMessage{{Role: models.LLMRoleSystem, Content: prompt}}, out...)
}

// parseTextProtocolResponse turns raw model text into an LLMResponse,
// recovering any TOOL_CALL invocations via ParseToolCalls.
func parseTextProtocolResponse(content string) models.LLMResponse {
	parsed := ParseToolCalls(content)
	resp := models.LLMResponse{Content: content}
	if len(parsed) == 0 {
		resp.FinishReason = models.FinishStop
		return resp
	}
	for i, p := range parsed {
		resp.ToolCalls = append(resp.ToolCalls, models.AgentToolCall{
			ID:        fmt.Sprintf("text_call_%d", i+1),
			Name:      p.Name,
			Arguments: p.Arguments,
		})
	}
	resp.FinishReason = models.FinishToolCalls
	return resp
}

// formatToolResultAsUserMessage renders a tool's outcome as a role=tool
// message; NormalizeMessages folds it into the surrounding user message
// before the next request, since text-protocol providers have no dedicated
// tool turn.
func formatToolResultAsUserMessage(toolName string, result map[string]any) models.LLMMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool '%s' result:\n", toolName)
	keys := make([]string, 0, len(result))
	for k := range result {
		keys = append(keys, k)
	}
	sortStrings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", k, result[k])
	}
	return models.LLMMessage{Role: models.LLMRoleTool, Name: toolName, Content: strings.TrimSpace(b.String())}
}

// classifyOpenAICompatError wraps an OpenAI-compatible API error with a
// provider name and transient/permanent/configuration classification.
func classifyOpenAICompatError(provider string, err error) error {
	msg := strings.ToLower(err.Error())
	class := ErrPermanent
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "invalid api key") || strings.Contains(msg, "unauthorized"):
		class = ErrConfiguration
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		class = ErrTransient
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") || strings.Contains(msg, "503") || strings.Contains(msg, "504"):
		class = ErrTransient
	case looksTransient(err):
		class = ErrTransient
	}
	return &ProviderError{Provider: provider, Class: class, Err: err}
}
