package agentloop

import (
	"context"
	"strings"
	"testing"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// stubClient is a minimal llmclient.Client for exercising decompose/boost
// without a real provider.
type stubClient struct {
	response models.LLMResponse
	err      error
}

func (s *stubClient) Chat(ctx context.Context, messages []models.LLMMessage, tools []models.ToolDefinition, temperature float64, maxTokens int) (models.LLMResponse, error) {
	return s.response, s.err
}

func (s *stubClient) FormatToolResult(toolCallID, toolName string, result map[string]any) models.LLMMessage {
	return models.LLMMessage{Role: models.LLMRoleTool, ToolCallID: toolCallID, Name: toolName}
}

func (s *stubClient) Name() string { return "stub" }

func TestParseTaskStepsParsesStepsAndDoneLine(t *testing.T) {
	input := `STEP 1: fill - #search-input - "laptop"
STEP 2: click - button[type="submit"]
STEP 3: wait - .search-results
DONE: Product page is displayed with product details`

	steps, done := parseTaskSteps(input)
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3: %+v", len(steps), steps)
	}
	if steps[0].Action != "fill" || steps[0].Target != "#search-input" || steps[0].Value != "laptop" {
		t.Errorf("step 0 = %+v", steps[0])
	}
	if steps[1].Action != "click" || steps[1].Target != `button[type="submit"]` || steps[1].Value != "" {
		t.Errorf("step 1 = %+v", steps[1])
	}
	if done != "Product page is displayed with product details" {
		t.Errorf("done = %q", done)
	}
}

func TestParseTaskStepsIgnoresMalformedLines(t *testing.T) {
	steps, done := parseTaskSteps("not a step line\nSTEP abc: bad number\nSTEP 1: onlyaction")
	if len(steps) != 0 {
		t.Fatalf("expected no steps parsed, got %+v", steps)
	}
	if done != "" {
		t.Fatalf("expected empty done criteria, got %q", done)
	}
}

func TestDecomposeTaskFallsBackToEmptyOnError(t *testing.T) {
	client := &stubClient{err: context.DeadlineExceeded}
	steps, done := decomposeTask(context.Background(), client, "search for a laptop", "https://shop.test")
	if steps != nil || done != "" {
		t.Fatalf("expected empty fallback, got steps=%+v done=%q", steps, done)
	}
}

func TestDecomposeTaskParsesSuccessfulResponse(t *testing.T) {
	client := &stubClient{response: models.LLMResponse{Content: "STEP 1: click - #go\nDONE: done"}}
	steps, done := decomposeTask(context.Background(), client, "task", "https://shop.test")
	if len(steps) != 1 || steps[0].Action != "click" {
		t.Fatalf("steps = %+v", steps)
	}
	if done != "done" {
		t.Fatalf("done = %q", done)
	}
}

func TestBoostTaskFallsBackToOriginalOnError(t *testing.T) {
	client := &stubClient{err: context.DeadlineExceeded}
	got := boostTask(context.Background(), client, "original task", "https://shop.test")
	if got != "original task" {
		t.Fatalf("got %q, want original task unchanged", got)
	}
}

func TestBoostTaskWrapsEnhancedPlan(t *testing.T) {
	client := &stubClient{response: models.LLMResponse{Content: "1. Do the thing"}}
	got := boostTask(context.Background(), client, "original task", "https://shop.test")
	if got == "original task" {
		t.Fatal("expected boosted content, got raw fallback")
	}
	if !strings.Contains(got, "1. Do the thing") || !strings.Contains(got, "original task") {
		t.Fatalf("expected boosted wrapper to contain both task and enhancement, got %q", got)
	}
}

func TestToolMatchesStepClick(t *testing.T) {
	step := models.TaskStep{Action: "click", Target: "Sign In"}
	if !toolMatchesStep("click_text", map[string]any{"text": "Sign In"}, step) {
		t.Fatal("expected click_text to satisfy a click step with matching target")
	}
	if toolMatchesStep("fill", map[string]any{}, step) {
		t.Fatal("fill tool should not satisfy a click step")
	}
}

func TestToolMatchesStepFillFuzzyValue(t *testing.T) {
	step := models.TaskStep{Action: "fill", Value: "laptop"}
	if !toolMatchesStep("fill", map[string]any{"value": "laptop computer"}, step) {
		t.Fatal("expected substring fuzzy match to satisfy the step")
	}
	if toolMatchesStep("fill", map[string]any{"value": "phone"}, step) {
		t.Fatal("unrelated value should not satisfy the step")
	}
}

func TestToolMatchesStepTypeTextUsesTextArg(t *testing.T) {
	step := models.TaskStep{Action: "type", Value: "ada"}
	if !toolMatchesStep("type_text", map[string]any{"text": "Ada Lovelace"}, step) {
		t.Fatal("expected type_text's text arg to satisfy a type step")
	}
}

func TestDedupToolCallsDropsIdenticalCalls(t *testing.T) {
	calls := []models.AgentToolCall{
		{ID: "1", Name: "click", Arguments: map[string]any{"selector": "#a"}},
		{ID: "2", Name: "click", Arguments: map[string]any{"selector": "#a"}},
		{ID: "3", Name: "click", Arguments: map[string]any{"selector": "#b"}},
	}
	unique := dedupToolCalls(calls)
	if len(unique) != 2 {
		t.Fatalf("got %d unique calls, want 2: %+v", len(unique), unique)
	}
}

func TestToolCallKeyIgnoresArgumentOrder(t *testing.T) {
	a := models.AgentToolCall{Name: "fill", Arguments: map[string]any{"selector": "#x", "value": "y"}}
	b := models.AgentToolCall{Name: "fill", Arguments: map[string]any{"value": "y", "selector": "#x"}}
	if toolCallKey(a) != toolCallKey(b) {
		t.Fatalf("keys differ despite identical arguments: %q vs %q", toolCallKey(a), toolCallKey(b))
	}
}

func TestPruneMessagesKeepsSystemAndRecentWindow(t *testing.T) {
	messages := []models.LLMMessage{{Role: models.LLMRoleSystem, Content: "sys"}}
	for i := 0; i < 20; i++ {
		messages = append(messages, models.LLMMessage{Role: models.LLMRoleUser, Content: "msg"})
	}
	pruned := pruneMessages(messages, 12)
	if len(pruned) != 13 {
		t.Fatalf("got %d messages, want 13 (system + 12)", len(pruned))
	}
	if pruned[0].Role != models.LLMRoleSystem {
		t.Fatalf("expected system message first, got %+v", pruned[0])
	}
}

func TestHasActionableStepRequiresSuccessfulActionableTool(t *testing.T) {
	history := []models.AgentStep{
		{ToolName: "get_page_info"},
		{ToolName: "click", Error: "failed"},
	}
	if hasActionableStep(history) {
		t.Fatal("expected false: no successful actionable step present")
	}
	history = append(history, models.AgentStep{ToolName: "click"})
	if !hasActionableStep(history) {
		t.Fatal("expected true: a successful click is present")
	}
}

func TestHandleNoToolCallsAcceptsCleanCompletion(t *testing.T) {
	state := &runState{history: []models.AgentStep{{ToolName: "click"}}}
	events := make(chan *models.AgentEvent, 16)
	loop := &AgentLoop{}

	stuck := loop.handleNoToolCalls(models.LLMResponse{Content: "TASK_COMPLETE"}, state, events)
	if stuck {
		t.Fatal("did not expect stuck=true")
	}
	if !state.taskComplete {
		t.Fatal("expected taskComplete=true after clean TASK_COMPLETE with a prior actionable step")
	}
}

func TestHandleNoToolCallsRejectsCompletionWithoutActionableStep(t *testing.T) {
	state := &runState{history: []models.AgentStep{{ToolName: "get_page_info"}}}
	events := make(chan *models.AgentEvent, 16)
	loop := &AgentLoop{}

	loop.handleNoToolCalls(models.LLMResponse{Content: "TASK_COMPLETE"}, state, events)
	if state.taskComplete {
		t.Fatal("expected completion to be rejected: no actionable step in history")
	}
}

func TestHandleNoToolCallsRejectsMixedCompletionText(t *testing.T) {
	state := &runState{history: []models.AgentStep{{ToolName: "click"}}}
	events := make(chan *models.AgentEvent, 16)
	loop := &AgentLoop{}

	loop.handleNoToolCalls(models.LLMResponse{Content: "I think TASK_COMPLETE but let me explain further in detail"}, state, events)
	if state.taskComplete {
		t.Fatal("expected mixed TASK_COMPLETE text to be rejected")
	}
	last := state.messages[len(state.messages)-1]
	if last.Content == "" {
		t.Fatal("expected a corrective user message to be appended")
	}
}

func TestHandleNoToolCallsSticksAfterFiveStreak(t *testing.T) {
	state := &runState{}
	events := make(chan *models.AgentEvent, 16)
	loop := &AgentLoop{}

	var stuck bool
	for i := 0; i < maxNoToolCallStreak; i++ {
		stuck = loop.handleNoToolCalls(models.LLMResponse{Content: "still thinking"}, state, events)
	}
	if !stuck {
		t.Fatal("expected stuck=true after 5 consecutive no-tool-call turns")
	}
}
