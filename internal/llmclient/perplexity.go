package llmclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wayfarerhq/pilot/pkg/models"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityClient drives Perplexity's OpenAI-compatible chat endpoint. It
// lacks native function-calling, so tool availability is communicated through
// a system-prompt text protocol and replies are parsed with ParseToolCalls.
type PerplexityClient struct {
	client       *openai.Client
	defaultModel string
	maxAttempts  int
	budget       Budget
}

// PerplexityConfig configures a PerplexityClient.
type PerplexityConfig struct {
	APIKey       string
	DefaultModel string
	MaxAttempts  int
}

// NewPerplexityClient builds a PerplexityClient pointed at Perplexity's API
// through the OpenAI-compatible client with a custom base URL.
func NewPerplexityClient(cfg PerplexityConfig) (*PerplexityClient, error) {
	if cfg.APIKey == "" {
		return nil, &ProviderError{Provider: "perplexity", Class: ErrConfiguration, Err: fmt.Errorf("API key is required")}
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "sonar"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = perplexityBaseURL

	return &PerplexityClient{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: cfg.DefaultModel,
		maxAttempts:  cfg.MaxAttempts,
		budget:       DefaultBudget(),
	}, nil
}

func (c *PerplexityClient) Name() string { return "perplexity" }

func (c *PerplexityClient) Chat(ctx context.Context, messages []models.LLMMessage, tools []models.ToolDefinition, temperature float64, maxTokens int) (models.LLMResponse, error) {
	prepared := c.budget.Apply(NormalizeMessages(injectToolsPrompt(messages, tools)))

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(prepared))
	for _, m := range prepared {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case models.LLMRoleSystem:
			role = openai.ChatMessageRoleSystem
		case models.LLMRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.defaultModel,
		Messages:    chatMessages,
		Temperature: float32(temperature),
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	return WithRetry(ctx, c.maxAttempts, func(int) (models.LLMResponse, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return models.LLMResponse{}, classifyOpenAICompatError("perplexity", err)
		}
		if len(resp.Choices) == 0 {
			return models.LLMResponse{}, &ProviderError{Provider: "perplexity", Class: ErrTransient, Err: fmt.Errorf("empty choices")}
		}
		content := resp.Choices[0].Message.Content
		return parseTextProtocolResponse(content), nil
	})
}

func (c *PerplexityClient) FormatToolResult(toolCallID, toolName string, result map[string]any) models.LLMMessage {
	return formatToolResultAsUserMessage(toolName, result)
}
