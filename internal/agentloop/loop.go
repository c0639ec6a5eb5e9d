package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wayfarerhq/pilot/internal/browser"
	"github.com/wayfarerhq/pilot/internal/codegen"
	"github.com/wayfarerhq/pilot/internal/llmclient"
	"github.com/wayfarerhq/pilot/internal/sessionregistry"
	"github.com/wayfarerhq/pilot/internal/tools/browseragent"
	"github.com/wayfarerhq/pilot/pkg/models"
)

const eventBufferSize = 64

// AgentLoop drives one browser-agent run: launch, plan, execute tool calls
// in a loop with the LLM, generate test code, and close the browser on every
// exit path.
type AgentLoop struct {
	llm      llmclient.Client
	registry *browseragent.Registry
	codegen  *codegen.Generator
	config   Config
	tracer   *Tracer
}

// New builds an AgentLoop bound to one LLM client and tool registry. A nil
// tracer is replaced with a no-op one so Run never needs a nil check.
func New(llm llmclient.Client, registry *browseragent.Registry, config Config, tracer *Tracer) *AgentLoop {
	if registry == nil {
		registry = browseragent.NewRegistry()
	}
	if tracer == nil {
		tracer, _ = NewTracer(TraceConfig{})
	}
	return &AgentLoop{
		llm:      llm,
		registry: registry,
		codegen:  codegen.New(),
		config:   config.withDefaults(),
		tracer:   tracer,
	}
}

// runState tracks one Run's mutable progress across loop iterations.
type runState struct {
	messages     []models.LLMMessage
	history      []models.AgentStep
	stuckCount   int
	repeatCount  int
	lastToolKey  string
	taskSteps    []models.TaskStep
	currentStep  int
	doneCriteria string
	taskComplete bool
}

// Run launches a browser, executes task against url, and streams events
// until the task completes, the step budget is exhausted, or session is
// stopped. The returned channel is closed on every exit path; the browser is
// always closed before it closes.
func (l *AgentLoop) Run(ctx context.Context, task, url string, session *sessionregistry.Session) <-chan *models.AgentEvent {
	events := make(chan *models.AgentEvent, eventBufferSize)

	go func() {
		defer close(events)
		l.run(ctx, task, url, session, events)
	}()

	return events
}

func (l *AgentLoop) run(ctx context.Context, task, url string, session *sessionregistry.Session, events chan<- *models.AgentEvent) {
	emitLog(events, "Starting agent for task: "+task)
	emitLog(events, "Target URL: "+url)

	runCtx, runSpan := l.tracer.TraceRun(ctx, task, url)
	defer runSpan.End()

	var cancel context.CancelFunc
	if l.config.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, l.config.Timeout)
		defer cancel()
	}

	adapter, err := browser.New(runCtx, browser.Options{
		Headless:       l.config.Headless,
		ViewportWidth:  l.config.ViewportWidth,
		ViewportHeight: l.config.ViewportHeight,
		HTTPUsername:   l.config.HTTPUsername,
		HTTPPassword:   l.config.HTTPPassword,
	})
	if err != nil {
		l.tracer.RecordError(runSpan, err)
		emitError(events, fmt.Sprintf("Agent error: %v", err))
		return
	}
	defer func() {
		adapter.Close()
		emitLog(events, "Browser closed")
	}()

	emitLog(events, "Browser launched successfully")

	executor := browseragent.NewExecutor(l.registry, adapter, nil)

	emitLog(events, "Navigating to "+url+"...")
	if err := adapter.Goto(runCtx, url); err != nil {
		l.tracer.RecordError(runSpan, err)
		emitError(events, fmt.Sprintf("Agent error: %v", err))
		return
	}
	if title, err := adapter.Title(runCtx); err == nil {
		emitLog(events, "Page loaded: "+title)
	}

	if shot, err := adapter.Screenshot(runCtx, browser.ScreenshotOptions{}); err == nil {
		events <- &models.AgentEvent{Type: models.EventScreenshot, Screenshot: shot, Timestamp: now()}
	}

	state := &runState{
		messages: []models.LLMMessage{},
	}

	finalTask := l.prepareTask(runCtx, task, url, state, events)

	state.messages = []models.LLMMessage{
		{Role: models.LLMRoleSystem, Content: systemPrompt},
		{Role: models.LLMRoleUser, Content: fmt.Sprintf(
			"%s\n\nI have already navigated to %s. The page is loaded.\n\nStart executing the task immediately. Be efficient and follow the steps in order.",
			finalTask, url,
		)},
	}

	tools := browseragent.All()

	stepCount := 0
	for stepCount < l.config.MaxSteps && !state.taskComplete {
		if session != nil && session.StopRequested() {
			events <- &models.AgentEvent{Type: models.EventComplete, Message: "Agent stopped by user", Timestamp: now()}
			l.emitCode(runCtx, task, url, state, events)
			return
		}

		stepCount++
		emitLog(events, fmt.Sprintf("--- Step %d ---", stepCount))

		stepCtx, stepSpan := l.tracer.TraceStep(runCtx, stepCount)

		llmCtx, llmSpan := l.tracer.TraceLLMRequest(stepCtx, l.llm.Name())
		resp, err := l.llm.Chat(llmCtx, state.messages, tools, l.config.Temperature, 0)
		l.tracer.RecordError(llmSpan, err)
		llmSpan.End()
		if err != nil {
			l.tracer.RecordError(stepSpan, err)
			stepSpan.End()
			emitError(events, fmt.Sprintf("LLM error: %v", err))
			break
		}

		if resp.Content != "" {
			emitLog(events, "Agent: "+truncate(resp.Content, 500))
		}

		if len(resp.ToolCalls) > 0 {
			l.handleToolCalls(stepCtx, resp, executor, session, state, stepCount, events)
		} else if stuck := l.handleNoToolCalls(resp, state, events); stuck {
			stepSpan.End()
			break
		}
		stepSpan.End()

		if !l.config.NoDelay {
			delay := l.config.StepDelay
			if delay == 0 {
				delay = 500 * time.Millisecond
			}
			select {
			case <-runCtx.Done():
			case <-time.After(delay):
			}
		}
	}

	l.emitCode(runCtx, task, url, state, events)

	switch {
	case state.taskComplete:
		events <- &models.AgentEvent{Type: models.EventComplete, Message: "Task completed successfully", Timestamp: now()}
	case stepCount >= l.config.MaxSteps:
		events <- &models.AgentEvent{Type: models.EventComplete, Message: fmt.Sprintf("Reached maximum steps (%d)", l.config.MaxSteps), Timestamp: now()}
	default:
		events <- &models.AgentEvent{Type: models.EventComplete, Message: "Agent stopped", Timestamp: now()}
	}
}

// prepareTask runs Phase 2: structured decomposition, boost-prompting, or
// the raw task, in that priority order.
func (l *AgentLoop) prepareTask(ctx context.Context, task, url string, state *runState, events chan<- *models.AgentEvent) string {
	structuredPrompt := ""

	if l.config.UseStructuredExecution {
		emitLog(events, "Decomposing task into structured steps...")
		state.taskSteps, state.doneCriteria = decomposeTask(ctx, l.llm, task, url)

		if len(state.taskSteps) > 0 {
			var b strings.Builder
			for _, s := range state.taskSteps {
				b.WriteString(fmt.Sprintf("  STEP %d: %s - %s", s.Number, s.Action, s.Target))
				if s.Value != "" {
					b.WriteString(fmt.Sprintf(" - %q", s.Value))
				}
				b.WriteString("\n")
			}
			emitLog(events, fmt.Sprintf("Task decomposed into %d steps:\n%s", len(state.taskSteps), b.String()))
			emitLog(events, "Completion criteria: "+state.doneCriteria)

			structuredPrompt = fmt.Sprintf(
				"\n## STRUCTURED TASK PLAN (follow these steps IN ORDER):\n%s\n## COMPLETION CRITERIA:\n%s\n\nIMPORTANT: Execute steps in order. After each step, verify it succeeded before moving to the next.\nCurrent step: STEP 1\n",
				b.String(), state.doneCriteria,
			)
		} else {
			emitLog(events, "Could not decompose task, using standard execution")
		}
	}

	boostedTask := task
	if l.config.UseBoostPrompt && structuredPrompt == "" {
		emitLog(events, "Enhancing task with LLM...")
		boostedTask = boostTask(ctx, l.llm, task, url)
		events <- &models.AgentEvent{Type: models.EventBoostedPrompt, Message: boostedTask, Timestamp: now()}
	}

	if structuredPrompt != "" {
		return task + "\n" + structuredPrompt
	}
	return boostedTask
}

// handleToolCalls executes Phase 3's tool-call branch: dedup, loop
// detection, execution, step-matching, and history recording.
func (l *AgentLoop) handleToolCalls(ctx context.Context, resp models.LLMResponse, executor *browseragent.Executor, session *sessionregistry.Session, state *runState, stepCount int, events chan<- *models.AgentEvent) {
	state.stuckCount = 0

	unique := dedupToolCalls(resp.ToolCalls)

	if len(unique) == 1 {
		key := toolCallKey(unique[0])
		if key == state.lastToolKey {
			state.repeatCount++
			if state.repeatCount >= maxRepeatedToolCalls {
				emitLog(events, "Agent repeating same action - attempting recovery")
				state.messages = append(state.messages, models.LLMMessage{
					Role:    models.LLMRoleUser,
					Content: "You are repeating the same action. This isn't working. Try a DIFFERENT approach or use a different tool/selector.",
				})
				state.repeatCount = 0
				state.lastToolKey = ""
				return
			}
		} else {
			state.repeatCount = 1
		}
		state.lastToolKey = key
	}

	state.messages = append(state.messages, models.LLMMessage{
		Role:      models.LLMRoleAssistant,
		Content:   resp.Content,
		ToolCalls: unique,
	})

	for _, tc := range unique {
		events <- &models.AgentEvent{Type: models.EventTool, Tool: tc.Name, ToolArgs: tc.Arguments, Timestamp: now()}
		emitLog(events, fmt.Sprintf("Executing: %s(%v)", tc.Name, tc.Arguments))

		toolCtx, toolSpan := l.tracer.TraceToolExecution(ctx, tc.Name)
		result := executor.Execute(toolCtx, tc.Name, tc.Arguments)
		if !result.Success {
			l.tracer.RecordError(toolSpan, fmt.Errorf("%s", result.Error))
		}
		toolSpan.End()

		step := models.AgentStep{
			StepNumber:      stepCount,
			ToolName:        tc.Name,
			ToolArgs:        tc.Arguments,
			ToolResult:      result,
			LLMResponseText: resp.Content,
			Timestamp:       now(),
		}

		if result.Success {
			emitLog(events, "Result: Success - "+summarizeResult(result))

			if len(state.taskSteps) > 0 && state.currentStep < len(state.taskSteps) {
				current := state.taskSteps[state.currentStep]
				if toolMatchesStep(tc.Name, tc.Arguments, current) {
					state.taskSteps[state.currentStep].Completed = true
					state.currentStep++
					remaining := len(state.taskSteps) - state.currentStep
					emitLog(events, fmt.Sprintf("Step %d completed. %d steps remaining.", current.Number, remaining))
					if remaining > 0 {
						next := state.taskSteps[state.currentStep]
						msg := fmt.Sprintf("Step %d completed. Now execute STEP %d: %s - %s", current.Number, next.Number, next.Action, next.Target)
						if next.Value != "" {
							msg += fmt.Sprintf(" - %q", next.Value)
						}
						state.messages = append(state.messages, models.LLMMessage{Role: models.LLMRoleUser, Content: msg})
					}
				}
			}

			if screenshotWorthyTools[tc.Name] {
				if shot, err := adapterScreenshot(ctx, executor); err == nil && shot != "" {
					step.Screenshot = shot
					events <- &models.AgentEvent{Type: models.EventScreenshot, Screenshot: shot, Timestamp: now()}
				}
			}
		} else {
			step.Error = result.Error
			emitLog(events, "Result: Failed - "+result.Error)
		}

		state.history = append(state.history, step)
		state.messages = append(state.messages, l.llm.FormatToolResult(tc.ID, tc.Name, resultToMap(result)))
		state.messages = llmclient.DefaultBudget().Apply(state.messages)
		state.messages = pruneMessages(state.messages, 12)
	}
}

// handleNoToolCalls executes Phase 3's no-tool-call branch: the stuck
// counter and the completion-discipline state machine. It returns true when
// the stuck counter has reached the "agent appears stuck" threshold.
func (l *AgentLoop) handleNoToolCalls(resp models.LLMResponse, state *runState, events chan<- *models.AgentEvent) bool {
	state.stuckCount++
	state.lastToolKey = ""

	if state.stuckCount >= maxNoToolCallStreak {
		emitError(events, "Agent appears stuck - no tool calls for 5 consecutive turns")
		return true
	}

	state.messages = append(state.messages, models.LLMMessage{Role: models.LLMRoleAssistant, Content: resp.Content})

	if resp.Content == "" {
		state.messages = append(state.messages, models.LLMMessage{Role: models.LLMRoleUser, Content: "Continue executing the task. What is the next action?"})
		return false
	}

	contentUpper := strings.ToUpper(strings.TrimSpace(resp.Content))
	isTaskComplete := contentUpper == "TASK_COMPLETE" || (strings.HasPrefix(contentUpper, "TASK_COMPLETE") && len(contentUpper) < 50)

	switch {
	case isTaskComplete:
		if hasActionableStep(state.history) {
			state.taskComplete = true
			emitLog(events, "Agent marked task as complete")
		} else {
			emitLog(events, "Agent tried to complete but no actionable steps performed - continuing")
			state.messages = append(state.messages, models.LLMMessage{
				Role:    models.LLMRoleUser,
				Content: "You have NOT completed the task yet. You only searched/viewed but didn't perform the actual action (e.g., clicking 'Add to Cart', submitting form, etc.). Continue with the task!",
			})
		}
	case strings.Contains(contentUpper, "TASK_COMPLETE"):
		emitLog(events, "Task completion rejected - mixed with other content, continuing")
		state.messages = append(state.messages, models.LLMMessage{
			Role:    models.LLMRoleUser,
			Content: "Do not mix TASK_COMPLETE with analysis. If task is done, respond ONLY with 'TASK_COMPLETE'. If not done, continue executing actions.",
		})
	default:
		state.messages = append(state.messages, models.LLMMessage{Role: models.LLMRoleUser, Content: "Continue executing the task. What is the next action?"})
	}

	return false
}

func (l *AgentLoop) emitCode(ctx context.Context, task, url string, state *runState, events chan<- *models.AgentEvent) {
	steps := HistoryToTestSteps(state.history, url)
	result := l.codegen.Generate(steps, l.config.Framework, l.config.Language)
	events <- &models.AgentEvent{Type: models.EventCode, Code: result.Code, Filename: result.Filename, Timestamp: now()}
}

func hasActionableStep(history []models.AgentStep) bool {
	for _, s := range history {
		if s.Error == "" && actionableTools[s.ToolName] {
			return true
		}
	}
	return false
}

func dedupToolCalls(calls []models.AgentToolCall) []models.AgentToolCall {
	seen := map[string]bool{}
	out := make([]models.AgentToolCall, 0, len(calls))
	for _, c := range calls {
		key := toolCallKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func toolCallKey(c models.AgentToolCall) string {
	keys := make([]string, 0, len(c.Arguments))
	for k := range c.Arguments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b, _ := json.Marshal(orderedArgs(c.Arguments, keys))
	return c.Name + ":" + string(b)
}

func orderedArgs(args map[string]any, keys []string) []any {
	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, args[k])
	}
	return out
}

func pruneMessages(messages []models.LLMMessage, maxMessages int) []models.LLMMessage {
	var system []models.LLMMessage
	var other []models.LLMMessage
	for _, m := range messages {
		if m.Role == models.LLMRoleSystem {
			system = append(system, m)
		} else {
			other = append(other, m)
		}
	}
	if len(other) > maxMessages {
		other = other[len(other)-maxMessages:]
	}
	return append(system, other...)
}

func summarizeResult(result *models.AgentToolResult) string {
	if result.Fields == nil {
		return fmt.Sprintf("%v", result.Tool)
	}
	if v, ok := result.Fields["url"]; ok {
		return fmt.Sprintf("URL: %v", v)
	}
	if v, ok := result.Fields["text"]; ok {
		text := fmt.Sprintf("%v", v)
		return "Text: " + truncate(text, 100)
	}
	if v, ok := result.Fields["count"]; ok {
		return fmt.Sprintf("Count: %v", v)
	}
	if v, ok := result.Fields["visible"]; ok {
		return fmt.Sprintf("Visible: %v", v)
	}
	return "Done"
}

func resultToMap(result *models.AgentToolResult) map[string]any {
	out := map[string]any{"success": result.Success, "tool": result.Tool}
	for k, v := range result.Fields {
		out[k] = v
	}
	if result.Error != "" {
		out["error"] = result.Error
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func adapterScreenshot(ctx context.Context, executor *browseragent.Executor) (string, error) {
	result := executor.Execute(ctx, "screenshot", nil)
	if !result.Success {
		return "", fmt.Errorf("%s", result.Error)
	}
	if s, ok := result.Fields["screenshot"].(string); ok {
		return s, nil
	}
	return "", nil
}

var now = time.Now
