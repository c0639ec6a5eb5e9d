package browseragent

import (
	"strings"
	"testing"
)

func TestRegistryNamesUnique(t *testing.T) {
	r := NewRegistry()
	seen := map[string]bool{}
	for _, name := range r.Names() {
		if seen[name] {
			t.Fatalf("duplicate tool name %q", name)
		}
		seen[name] = true
	}
	if len(seen) != len(definitions) {
		t.Fatalf("expected %d tools, registry has %d", len(definitions), len(seen))
	}
}

func TestEveryToolHasHandler(t *testing.T) {
	e := &Executor{registry: NewRegistry()}
	e.handlers = e.buildHandlers()

	for _, name := range e.registry.Names() {
		if _, ok := e.handlers[name]; !ok {
			t.Errorf("tool %q has no handler", name)
		}
	}
}

func TestPromptDescriptionListsAllTools(t *testing.T) {
	r := NewRegistry()
	desc := r.PromptDescription()
	for _, name := range r.Names() {
		if !strings.Contains(desc, name) {
			t.Errorf("prompt description missing tool %q", name)
		}
	}
}

func TestSchemaForNativeRequiredParams(t *testing.T) {
	r := NewRegistry()
	schemas := r.SchemaForNative()
	found := false
	for _, s := range schemas {
		if s.Name != "navigate" {
			continue
		}
		found = true
		required, _ := s.Parameters["required"].([]string)
		if len(required) != 1 || required[0] != "url" {
			t.Fatalf("navigate required params = %v, want [url]", required)
		}
	}
	if !found {
		t.Fatal("navigate tool not found in native schema")
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	e := &Executor{registry: NewRegistry()}
	e.handlers = e.buildHandlers()

	result := e.Execute(nil, "does_not_exist", nil)
	if result.Success {
		t.Fatal("expected failure for unknown tool")
	}
	if result.Tool != "does_not_exist" {
		t.Fatalf("tool = %q", result.Tool)
	}
	if !strings.Contains(result.Error, "unknown tool") {
		t.Fatalf("error = %q", result.Error)
	}
}
