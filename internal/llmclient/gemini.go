package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wayfarerhq/pilot/pkg/models"
	"google.golang.org/genai"
)

// GeminiClient is the native function-calling provider variant: Gemini
// reports tool calls directly as structured FunctionCall parts, so no text
// protocol is needed.
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
	maxAttempts  int
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey       string
	DefaultModel string
	MaxAttempts  int
}

// NewGeminiClient builds a GeminiClient backed by the Google Gen AI SDK.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, &ProviderError{Provider: "gemini", Class: ErrConfiguration, Err: fmt.Errorf("API key is required")}
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gemini-2.0-flash"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, defaultModel: cfg.DefaultModel, maxAttempts: cfg.MaxAttempts}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Chat(ctx context.Context, messages []models.LLMMessage, tools []models.ToolDefinition, temperature float64, maxTokens int) (models.LLMResponse, error) {
	var system string
	var contents []*genai.Content
	for _, m := range messages {
		if m.Role == models.LLMRoleSystem {
			system = strings.TrimSpace(system + "\n" + m.Content)
			continue
		}
		contents = append(contents, toGeminiContent(m))
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if len(tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: toGeminiFunctions(tools)}}
	}

	return WithRetry(ctx, c.maxAttempts, func(int) (models.LLMResponse, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.defaultModel, contents, config)
		if err != nil {
			return models.LLMResponse{}, classifyGeminiError(err)
		}
		return fromGeminiResponse(resp), nil
	})
}

func (c *GeminiClient) FormatToolResult(toolCallID, toolName string, result map[string]any) models.LLMMessage {
	content, _ := json.Marshal(result)
	return models.LLMMessage{
		Role:       models.LLMRoleTool,
		ToolCallID: toolCallID,
		Name:       toolName,
		Content:    string(content),
	}
}

func toGeminiContent(m models.LLMMessage) *genai.Content {
	role := genai.RoleUser
	if m.Role == models.LLMRoleAssistant {
		role = genai.RoleModel
	}
	content := &genai.Content{Role: role}
	if m.Content != "" {
		content.Parts = append(content.Parts, &genai.Part{Text: m.Content})
	}
	for _, tc := range m.ToolCalls {
		content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{Name: tc.Name, Args: tc.Arguments}})
	}
	if m.Role == models.LLMRoleTool {
		var response map[string]any
		if err := json.Unmarshal([]byte(m.Content), &response); err != nil {
			response = map[string]any{"result": m.Content}
		}
		content.Parts = append(content.Parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{Name: m.Name, Response: response}})
	}
	return content
}

func toGeminiFunctions(tools []models.ToolDefinition) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		properties := map[string]*genai.Schema{}
		var required []string
		for _, p := range t.Parameters {
			properties[p.Name] = &genai.Schema{Type: geminiType(p.Type), Description: p.Description}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: properties, Required: required},
		})
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func fromGeminiResponse(resp *genai.GenerateContentResponse) models.LLMResponse {
	var out models.LLMResponse
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		out.FinishReason = models.FinishStop
		return out
	}
	var text strings.Builder
	callIdx := 0
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			callIdx++
			out.ToolCalls = append(out.ToolCalls, models.AgentToolCall{
				ID:        fmt.Sprintf("gemini_call_%d", callIdx),
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
		}
	}
	out.Content = text.String()
	if len(out.ToolCalls) > 0 {
		out.FinishReason = models.FinishToolCalls
	} else {
		out.FinishReason = models.FinishStop
	}
	return out
}

func classifyGeminiError(err error) error {
	msg := strings.ToLower(err.Error())
	class := ErrPermanent
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthenticated") || strings.Contains(msg, "api key"):
		class = ErrConfiguration
	case strings.Contains(msg, "429") || strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "quota"):
		class = ErrTransient
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") || strings.Contains(msg, "503") || strings.Contains(msg, "504"):
		class = ErrTransient
	case looksTransient(err):
		class = ErrTransient
	}
	return &ProviderError{Provider: "gemini", Class: class, Err: err}
}
