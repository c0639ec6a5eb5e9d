// Package browseragent declares the browser-control tool catalogue consumed
// by an LLM-driven agent loop, and dispatches tool invocations onto a
// browser.Adapter.
package browseragent

import "github.com/wayfarerhq/pilot/pkg/models"

// definitions is the full, static catalogue of tools available to the model.
// Order matches category grouping so PromptDescription() reads naturally.
var definitions = []models.ToolDefinition{
	{Name: "navigate", Category: "navigation", Description: "Navigate the browser to a URL.",
		Parameters: []models.ToolParameter{
			{Name: "url", Type: "string", Description: "The absolute URL to navigate to.", Required: true},
		}},
	{Name: "go_back", Category: "navigation", Description: "Go back one entry in browser history."},
	{Name: "go_forward", Category: "navigation", Description: "Go forward one entry in browser history."},
	{Name: "reload", Category: "navigation", Description: "Reload the current page."},

	{Name: "click", Category: "interaction", Description: "Click an element matched by a CSS selector.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the element to click.", Required: true},
			{Name: "button", Type: "string", Description: "Mouse button to use.", Enum: []string{"left", "right", "middle"}, Default: "left"},
		}},
	{Name: "click_text", Category: "interaction", Description: "Click the first visible element whose text matches the given text.",
		Parameters: []models.ToolParameter{
			{Name: "text", Type: "string", Description: "Visible text to match.", Required: true},
			{Name: "element_type", Type: "string", Description: "Restrict the search to a kind of element.", Enum: []string{"any", "button", "link", "heading"}, Default: "any"},
			{Name: "exact", Type: "boolean", Description: "Require an exact text match instead of substring.", Default: false},
		}},
	{Name: "click_nth", Category: "interaction", Description: "Click the Nth (0-indexed) element matched by a CSS selector.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector to match multiple elements.", Required: true},
			{Name: "index", Type: "integer", Description: "Zero-based index of the element to click.", Required: true},
		}},
	{Name: "double_click", Category: "interaction", Description: "Double-click an element matched by a CSS selector.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the element to double-click.", Required: true},
		}},
	{Name: "hover", Category: "interaction", Description: "Hover the pointer over an element matched by a CSS selector.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the element to hover.", Required: true},
		}},

	{Name: "fill", Category: "input", Description: "Clear and set the value of a form field.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the field.", Required: true},
			{Name: "value", Type: "string", Description: "Value to set.", Required: true},
		}},
	{Name: "type_text", Category: "input", Description: "Type text into a form field key-by-key, simulating a real user.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the field.", Required: true},
			{Name: "text", Type: "string", Description: "Text to type.", Required: true},
		}},
	{Name: "press_key", Category: "input", Description: "Press a single keyboard key on the focused element.",
		Parameters: []models.ToolParameter{
			{Name: "key", Type: "string", Description: "Key name, e.g. Enter, Tab, Escape.", Required: true},
		}},
	{Name: "select_option", Category: "input", Description: "Choose an option in a <select> element.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the select element.", Required: true},
			{Name: "value", Type: "string", Description: "Option value to select.", Required: true},
		}},
	{Name: "check", Category: "input", Description: "Tick a checkbox or radio button.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the checkbox/radio.", Required: true},
		}},
	{Name: "uncheck", Category: "input", Description: "Clear a checkbox.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the checkbox.", Required: true},
		}},

	{Name: "scroll", Category: "scroll", Description: "Scroll the viewport in a direction by a pixel amount.",
		Parameters: []models.ToolParameter{
			{Name: "direction", Type: "string", Description: "Scroll direction.", Enum: []string{"up", "down"}, Required: true},
			{Name: "amount", Type: "integer", Description: "Pixels to scroll.", Default: 500},
		}},
	{Name: "scroll_to_element", Category: "scroll", Description: "Scroll an element into view.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the element.", Required: true},
		}},

	{Name: "wait_for_element", Category: "wait", Description: "Wait for an element to reach a given state. Accepts a comma-separated list of selectors to try.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector, or comma-separated alternatives.", Required: true},
			{Name: "state", Type: "string", Description: "State to wait for.", Enum: []string{"visible", "attached", "hidden", "detached"}, Default: "visible"},
			{Name: "timeout", Type: "integer", Description: "Timeout in milliseconds.", Default: 30000},
		}},
	{Name: "wait", Category: "wait", Description: "Pause for a fixed duration when no deterministic signal exists.",
		Parameters: []models.ToolParameter{
			{Name: "timeout", Type: "integer", Description: "Milliseconds to wait.", Required: true},
		}},

	{Name: "extract_text", Category: "extraction", Description: "Get the text content of an element.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the element.", Required: true},
		}},
	{Name: "extract_attribute", Category: "extraction", Description: "Get a named attribute's value from an element.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the element.", Required: true},
			{Name: "attribute", Type: "string", Description: "Attribute name.", Required: true},
		}},
	{Name: "extract_all_text", Category: "extraction", Description: "Get the text content of the page body, returned in full without truncation."},
	{Name: "count_elements", Category: "extraction", Description: "Count elements matched by a CSS selector.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector.", Required: true},
		}},
	{Name: "is_visible", Category: "extraction", Description: "Check whether an element is currently visible.",
		Parameters: []models.ToolParameter{
			{Name: "selector", Type: "string", Description: "CSS selector of the element.", Required: true},
		}},

	{Name: "get_page_info", Category: "info", Description: "Get the current URL, title and truncated HTML content."},
	{Name: "get_page_structure", Category: "info", Description: "Get a token-budgeted snapshot of interactive elements: inputs, buttons, links, and selects."},
	{Name: "screenshot", Category: "info", Description: "Capture a screenshot of the current page.",
		Parameters: []models.ToolParameter{
			{Name: "full_page", Type: "boolean", Description: "Capture the full scrollable page instead of the viewport.", Default: false},
		}},
	{Name: "dismiss_overlays", Category: "info", Description: "Best-effort dismissal of cookie banners, consent dialogs and promotional overlays."},
	{Name: "extract_modal_content", Category: "info", Description: "Extract a structured summary of the first visible modal dialog."},
	{Name: "find_and_click", Category: "info", Description: "The most forgiving click: dismisses overlays, then tries text matching, a CSS selector, a forced CSS selector, and an in-page text scan, in order.",
		Parameters: []models.ToolParameter{
			{Name: "target", Type: "string", Description: "Text or CSS selector identifying the element.", Required: true},
			{Name: "scroll_first", Type: "boolean", Description: "Scroll down slightly before attempting to click.", Default: false},
		}},
}

// All returns the static tool catalogue.
func All() []models.ToolDefinition {
	return definitions
}

// ByName looks up a single tool definition.
func ByName(name string) (models.ToolDefinition, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d, true
		}
	}
	return models.ToolDefinition{}, false
}
