package llmclient

import (
	"testing"

	"github.com/wayfarerhq/pilot/pkg/models"
)

func TestParseToolCallsBasic(t *testing.T) {
	content := "I'll click the login button.\n\nTOOL_CALL: click_text\nARGUMENTS: {\"text\": \"Login\", \"exact\": true}"
	calls := ParseToolCalls(content)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Name != "click_text" {
		t.Fatalf("name = %q", calls[0].Name)
	}
	if calls[0].Arguments["text"] != "Login" {
		t.Fatalf("args = %v", calls[0].Arguments)
	}
}

func TestParseToolCallsNestedBraces(t *testing.T) {
	content := `TOOL_CALL: fill
ARGUMENTS: {"selector": "#x", "value": "{\"nested\": true}"}`
	calls := ParseToolCalls(content)
	if len(calls) != 1 {
		t.Fatalf("got %d calls", len(calls))
	}
	if calls[0].Arguments["selector"] != "#x" {
		t.Fatalf("args = %v", calls[0].Arguments)
	}
}

func TestParseToolCallsRepairsSingleQuotesAndTrailingComma(t *testing.T) {
	content := `TOOL_CALL: click
ARGUMENTS: {'selector': '#submit', 'button': 'left',}`
	calls := ParseToolCalls(content)
	if len(calls) != 1 {
		t.Fatalf("got %d calls", len(calls))
	}
	if calls[0].Arguments["selector"] != "#submit" {
		t.Fatalf("args = %v", calls[0].Arguments)
	}
}

func TestParseToolCallsXMLFallback(t *testing.T) {
	content := `<invoke name="navigate"><parameter name="url">https://example.com</parameter></invoke>`
	calls := ParseToolCalls(content)
	if len(calls) != 1 || calls[0].Name != "navigate" {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].Arguments["url"] != "https://example.com" {
		t.Fatalf("args = %v", calls[0].Arguments)
	}
}

func TestParseToolCallsFuncStyleRejectsKeywords(t *testing.T) {
	content := `if ({"x": 1}) { doStuff(); }`
	calls := ParseToolCalls(content)
	if len(calls) != 0 {
		t.Fatalf("expected no calls from control-flow text, got %+v", calls)
	}
}

func TestParseToolCallsDedup(t *testing.T) {
	content := `TOOL_CALL: click
ARGUMENTS: {"selector": "#x"}`
	calls := ParseToolCalls(content + "\n" + content)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want deduped 1", len(calls))
	}
}

func TestNormalizeMessagesAlternatesAndEndsOnUser(t *testing.T) {
	msgs := []models.LLMMessage{
		{Role: models.LLMRoleSystem, Content: "sys"},
		{Role: models.LLMRoleUser, Content: "go"},
		{Role: models.LLMRoleUser, Content: "go again"},
		{Role: models.LLMRoleTool, Name: "click", Content: "ok"},
	}
	out := NormalizeMessages(msgs)

	if out[0].Role != models.LLMRoleSystem {
		t.Fatalf("first message role = %s", out[0].Role)
	}
	for i := 1; i < len(out)-1; i++ {
		if out[i].Role == out[i+1].Role {
			t.Fatalf("messages %d and %d both role %s: not alternating", i, i+1, out[i].Role)
		}
	}
	if out[len(out)-1].Role != models.LLMRoleUser {
		t.Fatalf("last message role = %s, want user", out[len(out)-1].Role)
	}
}
