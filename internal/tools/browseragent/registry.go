package browseragent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// Registry is the read-only, process-lifetime catalogue of browser tools.
type Registry struct {
	byName map[string]models.ToolDefinition
	names  []string
}

// NewRegistry builds a Registry from the static tool catalogue.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]models.ToolDefinition, len(definitions))}
	for _, d := range definitions {
		if _, dup := r.byName[d.Name]; dup {
			panic(fmt.Sprintf("browseragent: duplicate tool name %q", d.Name))
		}
		r.byName[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	return r
}

// Get returns a tool definition by name.
func (r *Registry) Get(name string) (models.ToolDefinition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns every registered tool name.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// nativeFunction is the JSON-Schema-shaped function declaration most native
// function-calling providers expect.
type nativeFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// SchemaForNative renders the catalogue as native function-calling
// declarations (JSON-Schema-shaped parameter objects).
func (r *Registry) SchemaForNative() []nativeFunction {
	out := make([]nativeFunction, 0, len(definitions))
	for _, d := range definitions {
		properties := make(map[string]any, len(d.Parameters))
		var required []string
		for _, p := range d.Parameters {
			prop := map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if len(p.Enum) > 0 {
				prop["enum"] = p.Enum
			}
			if p.Default != nil {
				prop["default"] = p.Default
			}
			properties[p.Name] = prop
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out = append(out, nativeFunction{
			Name:        d.Name,
			Description: d.Description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		})
	}
	return out
}

// PromptDescription renders the catalogue as a human-readable listing,
// grouped by category, for providers without native function-calling.
func (r *Registry) PromptDescription() string {
	byCategory := map[string][]models.ToolDefinition{}
	var categories []string
	for _, d := range definitions {
		if _, seen := byCategory[d.Category]; !seen {
			categories = append(categories, d.Category)
		}
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, cat := range categories {
		fmt.Fprintf(&b, "## %s\n", strings.ToUpper(cat[:1])+cat[1:])
		for _, d := range byCategory[cat] {
			fmt.Fprintf(&b, "- %s(", d.Name)
			parts := make([]string, 0, len(d.Parameters))
			for _, p := range d.Parameters {
				if p.Required {
					parts = append(parts, p.Name)
				} else {
					parts = append(parts, p.Name+"?")
				}
			}
			fmt.Fprintf(&b, "%s): %s\n", strings.Join(parts, ", "), d.Description)
		}
	}
	return b.String()
}
