package llmclient

import (
	"strings"
	"testing"

	"github.com/wayfarerhq/pilot/pkg/models"
)

func TestInjectToolsPromptCreatesSystemMessage(t *testing.T) {
	tools := []models.ToolDefinition{{Name: "navigate", Description: "go to a URL", Parameters: []models.ToolParameter{{Name: "url", Required: true}}}}
	out := injectToolsPrompt([]models.LLMMessage{{Role: models.LLMRoleUser, Content: "hi"}}, tools)
	if out[0].Role != models.LLMRoleSystem {
		t.Fatalf("expected a system message to be created, got role %s", out[0].Role)
	}
	if !strings.Contains(out[0].Content, "navigate(url)") {
		t.Fatalf("system message missing tool listing: %s", out[0].Content)
	}
	if !strings.Contains(out[0].Content, "TOOL_CALL:") {
		t.Fatalf("system message missing protocol instructions: %s", out[0].Content)
	}
}

func TestInjectToolsPromptAppendsToExistingSystemMessage(t *testing.T) {
	tools := []models.ToolDefinition{{Name: "click", Description: "click an element"}}
	out := injectToolsPrompt([]models.LLMMessage{
		{Role: models.LLMRoleSystem, Content: "You are a browser agent."},
		{Role: models.LLMRoleUser, Content: "hi"},
	}, tools)
	if len(out) != 2 {
		t.Fatalf("expected no new message, got %d messages", len(out))
	}
	if !strings.Contains(out[0].Content, "You are a browser agent.") || !strings.Contains(out[0].Content, "click") {
		t.Fatalf("system message should retain original content and append tools: %s", out[0].Content)
	}
}

func TestParseTextProtocolResponseNoToolCall(t *testing.T) {
	resp := parseTextProtocolResponse("TASK_COMPLETE")
	if resp.FinishReason != models.FinishStop {
		t.Fatalf("finish reason = %s, want stop", resp.FinishReason)
	}
	if len(resp.ToolCalls) != 0 {
		t.Fatalf("expected no tool calls")
	}
}

func TestParseTextProtocolResponseWithToolCall(t *testing.T) {
	resp := parseTextProtocolResponse("TOOL_CALL: navigate\nARGUMENTS: {\"url\": \"https://example.com\"}")
	if resp.FinishReason != models.FinishToolCalls {
		t.Fatalf("finish reason = %s, want tool_calls", resp.FinishReason)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "navigate" {
		t.Fatalf("tool calls = %+v", resp.ToolCalls)
	}
}

func TestFormatToolResultAsUserMessage(t *testing.T) {
	msg := formatToolResultAsUserMessage("navigate", map[string]any{"success": true})
	if msg.Role != models.LLMRoleTool {
		t.Fatalf("role = %s, want tool", msg.Role)
	}
	if !strings.Contains(msg.Content, "navigate") || !strings.Contains(msg.Content, "success") {
		t.Fatalf("content = %q", msg.Content)
	}
}
