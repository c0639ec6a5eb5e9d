package llmclient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// ToolsPrompt renders the tool catalogue and the TOOL_CALL/ARGUMENTS protocol
// instructions injected into the system message for providers that lack
// native function-calling.
func ToolsPrompt(toolListing string) string {
	var b strings.Builder
	b.WriteString("You can call exactly one tool per response, using this exact format:\n\n")
	b.WriteString("TOOL_CALL: <tool_name>\n")
	b.WriteString("ARGUMENTS: { \"param\": \"value\" }\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Call only one tool per response.\n")
	b.WriteString("- ARGUMENTS must be valid JSON with double-quoted keys and string values.\n")
	b.WriteString("- Never mix TASK_COMPLETE with analysis text; if the task is done, respond with TASK_COMPLETE alone.\n\n")
	b.WriteString("Available tools:\n")
	b.WriteString(toolListing)
	return b.String()
}

// NormalizeMessages restores strict user/assistant alternation after the
// system message, which some providers require. Consecutive same-role
// messages are merged; gaps are bridged with minimal placeholders; tool
// messages are folded into an adjacent user message; the final message is
// guaranteed to be role=user.
func NormalizeMessages(messages []models.LLMMessage) []models.LLMMessage {
	if len(messages) == 0 {
		return messages
	}

	var system *models.LLMMessage
	rest := make([]models.LLMMessage, 0, len(messages))
	for i := range messages {
		if messages[i].Role == models.LLMRoleSystem && system == nil {
			system = &messages[i]
			continue
		}
		rest = append(rest, messages[i])
	}

	// Fold tool messages into the surrounding user message.
	folded := make([]models.LLMMessage, 0, len(rest))
	for _, m := range rest {
		if m.Role == models.LLMRoleTool {
			prefix := fmt.Sprintf("Tool '%s': %s", m.Name, m.Content)
			if len(folded) > 0 && folded[len(folded)-1].Role == models.LLMRoleUser {
				folded[len(folded)-1].Content = strings.TrimSpace(folded[len(folded)-1].Content + "\n" + prefix)
				continue
			}
			folded = append(folded, models.LLMMessage{Role: models.LLMRoleUser, Content: prefix})
			continue
		}
		folded = append(folded, m)
	}

	// Merge consecutive same-role messages.
	merged := make([]models.LLMMessage, 0, len(folded))
	for _, m := range folded {
		if len(merged) > 0 && merged[len(merged)-1].Role == m.Role {
			merged[len(merged)-1].Content = strings.TrimSpace(merged[len(merged)-1].Content + "\n" + m.Content)
			merged[len(merged)-1].ToolCalls = append(merged[len(merged)-1].ToolCalls, m.ToolCalls...)
			continue
		}
		merged = append(merged, m)
	}

	// Bridge gaps to restore alternation, expecting user first.
	expect := models.LLMRoleUser
	alternating := make([]models.LLMMessage, 0, len(merged)*2)
	for _, m := range merged {
		if m.Role != expect {
			placeholder := "Acknowledged. Continue."
			if expect == models.LLMRoleUser {
				placeholder = "Please continue with the next action."
			}
			alternating = append(alternating, models.LLMMessage{Role: expect, Content: placeholder})
			expect = otherRole(expect)
		}
		alternating = append(alternating, m)
		expect = otherRole(m.Role)
	}

	if len(alternating) == 0 || alternating[len(alternating)-1].Role != models.LLMRoleUser {
		alternating = append(alternating, models.LLMMessage{Role: models.LLMRoleUser, Content: "Please continue with the next action."})
	}

	out := make([]models.LLMMessage, 0, len(alternating)+1)
	if system != nil {
		out = append(out, *system)
	}
	out = append(out, alternating...)
	return out
}

func otherRole(r models.LLMRole) models.LLMRole {
	if r == models.LLMRoleUser {
		return models.LLMRoleAssistant
	}
	return models.LLMRoleUser
}

var (
	toolCallRe  = regexp.MustCompile(`TOOL_CALL:\s*(\w+)`)
	xmlInvokeRe = regexp.MustCompile(`(?s)<invoke\s+name="(\w+)"[^>]*>(.*?)</invoke>`)
	funcCallRe  = regexp.MustCompile(`(\w+)\s*\(\s*(\{.*?\})\s*\)`)
)

// funcNameBlocklist rejects control-flow keywords and declarations that a
// naive funcName(...) regex would otherwise mistake for a tool call.
var funcNameBlocklist = map[string]bool{
	"if": true, "for": true, "while": true, "function": true,
	"def": true, "class": true, "switch": true, "catch": true,
}

// ParsedToolCall is one tool invocation recovered from free-form model text.
type ParsedToolCall struct {
	Name      string
	Arguments map[string]any
}

// ParseToolCalls extracts tool calls from a model reply written in the
// TOOL_CALL/ARGUMENTS text protocol, with a fallback ladder for malformed or
// differently-shaped output: XML <invoke> tags, then funcName({...}) calls.
// Results are deduplicated by name + canonicalized arguments.
func ParseToolCalls(content string) []ParsedToolCall {
	var calls []ParsedToolCall

	if m := toolCallRe.FindStringSubmatchIndex(content); m != nil {
		name := content[m[2]:m[3]]
		rest := content[m[1]:]
		if argIdx := strings.Index(rest, "ARGUMENTS:"); argIdx >= 0 {
			jsonStart := strings.IndexByte(rest[argIdx:], '{')
			if jsonStart >= 0 {
				jsonStart += argIdx
				if obj, ok := extractBraceMatched(rest, jsonStart); ok {
					if args, ok := parseOrRepairJSON(obj); ok {
						calls = append(calls, ParsedToolCall{Name: name, Arguments: args})
					}
				}
			}
		}
	}

	if len(calls) == 0 {
		for _, m := range xmlInvokeRe.FindAllStringSubmatch(content, -1) {
			name, body := m[1], m[2]
			args := parseInvokeParams(body)
			calls = append(calls, ParsedToolCall{Name: name, Arguments: args})
		}
	}

	if len(calls) == 0 {
		for _, m := range funcCallRe.FindAllStringSubmatch(content, -1) {
			name, rawArgs := m[1], m[2]
			if funcNameBlocklist[name] {
				continue
			}
			if args, ok := parseOrRepairJSON(rawArgs); ok {
				calls = append(calls, ParsedToolCall{Name: name, Arguments: args})
			}
		}
	}

	return dedupToolCalls(calls)
}

// extractBraceMatched finds the JSON object starting at start, respecting
// string literals and escape sequences rather than using a regex.
func extractBraceMatched(s string, start int) (string, bool) {
	if start >= len(s) || s[start] != '{' {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

var (
	singleQuotedKeyRe   = regexp.MustCompile(`'([^']*)'\s*:`)
	singleQuotedValueRe = regexp.MustCompile(`:\s*'([^']*)'`)
	trailingCommaRe     = regexp.MustCompile(`,(\s*[}\]])`)
	unquotedValueRe     = regexp.MustCompile(`:\s*([A-Za-z_][A-Za-z0-9_]*)\s*([,}])`)
)

// parseOrRepairJSON tries a strict parse, then applies a fixed set of
// repairs for common LLM-generated malformed JSON: single quotes, unquoted
// identifier-like values, and trailing commas.
func parseOrRepairJSON(raw string) (map[string]any, bool) {
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, true
	}

	repaired := raw
	repaired = singleQuotedKeyRe.ReplaceAllString(repaired, `"$1":`)
	repaired = singleQuotedValueRe.ReplaceAllString(repaired, `: "$1"`)
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	repaired = unquotedValueRe.ReplaceAllStringFunc(repaired, func(match string) string {
		sub := unquotedValueRe.FindStringSubmatch(match)
		val := sub[1]
		if val == "true" || val == "false" || val == "null" {
			return match
		}
		return fmt.Sprintf(`: "%s"%s`, val, sub[2])
	})

	if err := json.Unmarshal([]byte(repaired), &args); err == nil {
		return args, true
	}
	return nil, false
}

var invokeParamRe = regexp.MustCompile(`(?s)<parameter\s+name="(\w+)">(.*?)</parameter>`)

func parseInvokeParams(body string) map[string]any {
	args := map[string]any{}
	for _, m := range invokeParamRe.FindAllStringSubmatch(body, -1) {
		args[m[1]] = strings.TrimSpace(m[2])
	}
	return args
}

func canonicalKey(c ParsedToolCall) string {
	keys := make([]string, 0, len(c.Arguments))
	for k := range c.Arguments {
		keys = append(keys, k)
	}
	sortStrings(keys)
	var b strings.Builder
	b.WriteString(c.Name)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, c.Arguments[k])
	}
	return b.String()
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func dedupToolCalls(calls []ParsedToolCall) []ParsedToolCall {
	seen := map[string]bool{}
	out := make([]ParsedToolCall, 0, len(calls))
	for _, c := range calls {
		key := canonicalKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
