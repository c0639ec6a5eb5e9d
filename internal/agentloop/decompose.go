package agentloop

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/wayfarerhq/pilot/internal/llmclient"
	"github.com/wayfarerhq/pilot/pkg/models"
)

var (
	stepLineRe = regexp.MustCompile(`(?i)^STEP\s*(\d+):\s*(.+)$`)
	doneLineRe = regexp.MustCompile(`(?i)^DONE:\s*(.+)$`)
)

// parseTaskSteps parses a decomposition response of the form
// "STEP N: action - target - \"value\"" into an ordered TaskStep plan plus
// its completion criterion.
func parseTaskSteps(decomposition string) ([]models.TaskStep, string) {
	var steps []models.TaskStep
	doneCriteria := ""

	for _, line := range strings.Split(strings.TrimSpace(decomposition), "\n") {
		line = strings.TrimSpace(line)

		if m := stepLineRe.FindStringSubmatch(line); m != nil {
			number, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			parts := strings.SplitN(m[2], " - ", 3)
			if len(parts) < 2 {
				continue
			}
			action := strings.ToLower(strings.TrimSpace(parts[0]))
			target := strings.TrimSpace(parts[1])
			value := ""
			if len(parts) > 2 {
				value = strings.Trim(strings.TrimSpace(parts[2]), `"'`)
			}
			steps = append(steps, models.TaskStep{
				Number: number,
				Action: action,
				Target: target,
				Value:  value,
			})
			continue
		}

		if m := doneLineRe.FindStringSubmatch(line); m != nil {
			doneCriteria = m[1]
		}
	}

	return steps, doneCriteria
}

// decomposeTask asks the LLM to break task into an ordered structured plan
// at temperature 0.0. Any failure (LLM error or empty response) degrades to
// an empty plan rather than aborting the run - the caller falls back to
// unstructured execution.
func decomposeTask(ctx context.Context, client llmclient.Client, task, url string) ([]models.TaskStep, string) {
	messages := []models.LLMMessage{
		{Role: models.LLMRoleUser, Content: decompositionPrompt(task, url)},
	}
	resp, err := client.Chat(ctx, messages, nil, 0.0, 0)
	if err != nil || resp.Content == "" {
		return nil, ""
	}
	return parseTaskSteps(resp.Content)
}

// boostTask asks the LLM to rewrite task into a richer execution plan at
// temperature 0.1. On any failure it returns the original task unchanged.
func boostTask(ctx context.Context, client llmclient.Client, task, url string) string {
	messages := []models.LLMMessage{
		{Role: models.LLMRoleUser, Content: boostPrompt(task, url)},
	}
	resp, err := client.Chat(ctx, messages, nil, 0.1, 0)
	if err != nil || resp.Content == "" {
		return task
	}
	return "ORIGINAL TASK: " + task + "\n\nENHANCED EXECUTION PLAN:\n" + resp.Content +
		"\n\nExecute this plan efficiently. Start with step 1."
}

// toolMatchesStep reports whether an executed tool call satisfies step's
// action, fuzzy-matching fill/type values and click_text targets.
func toolMatchesStep(toolName string, args map[string]any, step models.TaskStep) bool {
	action := strings.ToLower(step.Action)

	validTools, ok := stepToolSet[action]
	if !ok {
		validTools = []string{action}
	}
	if !contains(validTools, toolName) {
		return false
	}

	if (action == "fill" || action == "type") && step.Value != "" {
		toolValue := firstNonEmpty(stringArg(args, "value"), stringArg(args, "text"))
		if !fuzzyContains(step.Value, toolValue) {
			return false
		}
	}

	if toolName == "click_text" && step.Target != "" {
		toolText := stringArg(args, "text")
		if !fuzzyContains(step.Target, toolText) {
			return false
		}
	}

	return true
}

func fuzzyContains(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
