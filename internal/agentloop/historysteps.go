package agentloop

import (
	"fmt"
	"strconv"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// nonActionableTools produce no executable test code (pure observation).
var nonActionableTools = map[string]bool{
	"screenshot": true, "get_page_structure": true, "extract_text": true,
	"extract_all_text": true, "get_page_info": true, "get_element_text": true,
	"is_visible": true, "count_elements": true, "extract_attribute": true,
}

// toolToAction maps an executed tool name to its TestStep.Action.
var toolToAction = map[string]string{
	"navigate":          "navigate",
	"click":             "click",
	"click_text":        "click_text",
	"click_nth":         "click_nth",
	"find_and_click":    "click_text",
	"fill":              "fill",
	"type_text":         "type",
	"press_key":         "press",
	"hover":             "hover",
	"select_option":     "select",
	"check":             "check",
	"uncheck":           "uncheck",
	"scroll":            "scroll",
	"scroll_to_element": "scroll_to",
	"wait":              "wait",
	"wait_for_element":  "wait_for",
	"double_click":      "double_click",
}

// HistoryToTestSteps deterministically converts a run's step history into
// the TestStep intermediate representation CodeGenerator consumes. It
// always starts with an initial navigate to startURL, then maps each
// successful, actionable AgentStep via toolToAction, extracting the
// step's selector/value per tool and dropping consecutive duplicates keyed
// on action:selector:value.
func HistoryToTestSteps(history []models.AgentStep, startURL string) []models.TestStep {
	steps := make([]models.TestStep, 0, len(history)+1)
	steps = append(steps, models.TestStep{Action: "navigate", Value: startURL})

	lastKey := ""
	for _, h := range history {
		if h.Error != "" || h.ToolName == "" || nonActionableTools[h.ToolName] {
			continue
		}
		action, ok := toolToAction[h.ToolName]
		if !ok {
			continue
		}

		selector, value := extractSelectorAndValue(h.ToolName, h.ToolArgs)

		key := fmt.Sprintf("%s:%s:%s", action, selector, value)
		if key == lastKey {
			continue
		}
		lastKey = key

		steps = append(steps, models.TestStep{Action: action, Selector: selector, Value: value})
	}

	return steps
}

func extractSelectorAndValue(toolName string, args map[string]any) (selector, value string) {
	selector = stringArg(args, "selector")

	switch toolName {
	case "navigate":
		selector = ""
		value = stringArg(args, "url")
	case "fill":
		value = stringArg(args, "value")
	case "type_text":
		value = stringArg(args, "text")
	case "press_key":
		value = stringArg(args, "key")
	case "click_text", "find_and_click":
		selector = ""
		value = firstNonEmpty(stringArg(args, "text"), stringArg(args, "target"))
	case "click_nth":
		value = strconv.Itoa(intArg(args, "index", 0))
	case "select_option":
		value = firstNonEmpty(stringArg(args, "value"), stringArg(args, "label"))
	case "scroll":
		selector = ""
		direction := stringArg(args, "direction")
		if direction == "" {
			direction = "down"
		}
		value = fmt.Sprintf("%s:%d", direction, intArg(args, "amount", 500))
	case "scroll_to_element":
		// selector only, already set above.
	case "wait":
		selector = ""
		value = strconv.Itoa(intArg(args, "timeout", 1000))
	case "wait_for_element":
		// selector only, already set above.
	}
	return selector, value
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
