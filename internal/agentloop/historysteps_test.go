package agentloop

import (
	"testing"

	"github.com/wayfarerhq/pilot/pkg/models"
)

func TestHistoryToTestStepsStartsWithNavigate(t *testing.T) {
	steps := HistoryToTestSteps(nil, "https://example.com")
	if len(steps) != 1 || steps[0].Action != "navigate" || steps[0].Value != "https://example.com" {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestHistoryToTestStepsSkipsErroredAndObservationSteps(t *testing.T) {
	history := []models.AgentStep{
		{ToolName: "click", ToolArgs: map[string]any{"selector": "#a"}, Error: "timeout"},
		{ToolName: "screenshot"},
		{ToolName: "get_page_structure"},
		{ToolName: "click", ToolArgs: map[string]any{"selector": "#ok"}},
	}
	steps := HistoryToTestSteps(history, "https://example.com")
	if len(steps) != 2 {
		t.Fatalf("steps = %+v, want 2 (navigate + one click)", steps)
	}
	if steps[1].Action != "click" || steps[1].Selector != "#ok" {
		t.Fatalf("steps[1] = %+v", steps[1])
	}
}

func TestHistoryToTestStepsMapsToolSpecificFields(t *testing.T) {
	history := []models.AgentStep{
		{ToolName: "fill", ToolArgs: map[string]any{"selector": "#q", "value": "laptop"}},
		{ToolName: "type_text", ToolArgs: map[string]any{"selector": "#name", "text": "Ada"}},
		{ToolName: "click_text", ToolArgs: map[string]any{"text": "Login"}},
		{ToolName: "click_nth", ToolArgs: map[string]any{"selector": ".item", "index": 2}},
		{ToolName: "scroll", ToolArgs: map[string]any{"direction": "down", "amount": 300}},
		{ToolName: "wait", ToolArgs: map[string]any{"timeout": 1500}},
	}
	steps := HistoryToTestSteps(history, "https://example.com")

	want := []models.TestStep{
		{Action: "navigate", Value: "https://example.com"},
		{Action: "fill", Selector: "#q", Value: "laptop"},
		{Action: "type", Selector: "#name", Value: "Ada"},
		{Action: "click_text", Value: "Login"},
		{Action: "click_nth", Selector: ".item", Value: "2"},
		{Action: "scroll", Value: "down:300"},
		{Action: "wait", Value: "1500"},
	}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d: %+v", len(steps), len(want), steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %+v, want %+v", i, steps[i], want[i])
		}
	}
}

func TestHistoryToTestStepsDedupesConsecutiveByActionSelectorValue(t *testing.T) {
	history := []models.AgentStep{
		{ToolName: "click", ToolArgs: map[string]any{"selector": "#x"}},
		{ToolName: "click", ToolArgs: map[string]any{"selector": "#x"}},
	}
	steps := HistoryToTestSteps(history, "https://example.com")
	if len(steps) != 2 {
		t.Fatalf("expected navigate + one deduped click, got %+v", steps)
	}
}

func TestHistoryToTestStepsIsIdempotent(t *testing.T) {
	history := []models.AgentStep{
		{ToolName: "fill", ToolArgs: map[string]any{"selector": "#q", "value": "laptop"}},
		{ToolName: "click", ToolArgs: map[string]any{"selector": "button[type=submit]"}},
	}
	a := HistoryToTestSteps(history, "https://example.com")
	b := HistoryToTestSteps(history, "https://example.com")
	if len(a) != len(b) {
		t.Fatalf("non-idempotent: %+v vs %+v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-idempotent at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}
