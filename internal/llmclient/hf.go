package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wayfarerhq/pilot/pkg/models"
)

const hfDefaultBaseURL = "https://api-inference.huggingface.co/models"

// HFClient drives Hugging Face's Inference API chat-completion endpoint.
// Like PerplexityClient it has no native function-calling, so it shares the
// same TOOL_CALL/ARGUMENTS text protocol.
type HFClient struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	defaultModel string
	maxAttempts  int
	budget       Budget
}

// HFConfig configures an HFClient.
type HFConfig struct {
	APIKey       string
	BaseURL      string // defaults to the public Inference API
	DefaultModel string
	MaxAttempts  int
	Timeout      time.Duration
}

// NewHFClient builds an HFClient.
func NewHFClient(cfg HFConfig) (*HFClient, error) {
	if cfg.APIKey == "" {
		return nil, &ProviderError{Provider: "hf", Class: ErrConfiguration, Err: fmt.Errorf("API key is required")}
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "meta-llama/Meta-Llama-3-8B-Instruct"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = hfDefaultBaseURL
	}
	return &HFClient{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		defaultModel: cfg.DefaultModel,
		maxAttempts:  cfg.MaxAttempts,
		budget:       DefaultBudget(),
	}, nil
}

func (c *HFClient) Name() string { return "hf" }

type hfChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hfChatRequest struct {
	Model       string          `json:"model"`
	Messages    []hfChatMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Stream      bool            `json:"stream"`
}

type hfChatChoice struct {
	Message hfChatMessage `json:"message"`
}

type hfChatResponse struct {
	Choices []hfChatChoice `json:"choices"`
}

func (c *HFClient) Chat(ctx context.Context, messages []models.LLMMessage, tools []models.ToolDefinition, temperature float64, maxTokens int) (models.LLMResponse, error) {
	prepared := c.budget.Apply(NormalizeMessages(injectToolsPrompt(messages, tools)))

	payload := hfChatRequest{
		Model:       c.defaultModel,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	for _, m := range prepared {
		payload.Messages = append(payload.Messages, hfChatMessage{Role: string(m.Role), Content: m.Content})
	}

	return WithRetry(ctx, c.maxAttempts, func(int) (models.LLMResponse, error) {
		return c.doChat(ctx, payload)
	})
}

func (c *HFClient) doChat(ctx context.Context, payload hfChatRequest) (models.LLMResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.LLMResponse{}, &ProviderError{Provider: "hf", Class: ErrPermanent, Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := c.baseURL + "/" + payload.Model + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.LLMResponse{}, &ProviderError{Provider: "hf", Class: ErrPermanent, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.LLMResponse{}, &ProviderError{Provider: "hf", Class: ErrTransient, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.LLMResponse{}, &ProviderError{Provider: "hf", Class: ErrTransient, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return models.LLMResponse{}, &ProviderError{
			Provider: "hf",
			Class:    classifyHTTPStatus(resp.StatusCode),
			Err:      fmt.Errorf("hf status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}

	var parsed hfChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return models.LLMResponse{}, &ProviderError{Provider: "hf", Class: ErrTransient, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return models.LLMResponse{}, &ProviderError{Provider: "hf", Class: ErrTransient, Err: fmt.Errorf("empty choices")}
	}

	return parseTextProtocolResponse(parsed.Choices[0].Message.Content), nil
}

func (c *HFClient) FormatToolResult(toolCallID, toolName string, result map[string]any) models.LLMMessage {
	return formatToolResultAsUserMessage(toolName, result)
}
