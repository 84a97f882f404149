// Package tools implements the capability registry and the three
// model-callable capabilities: Meilisearch lookup, read-only SQL
// analytics, and chart rendering.
package tools

import (
	"encoding/json"

	"github.com/shopsage/shopsage/internal/schema"
)

// Canonical capability names. These are part of the model-facing
// contract and appear verbatim in the tools_used summary.
const (
	NameMeilisearchQuery = "meilisearch_query"
	NameExecuteSQLQuery  = "execute_sql_query"
	NameGenerateChart    = "generate_chart"
)

// Registry holds a named set of capabilities and exposes the manifest
// handed to the model. It is populated once at construction time and
// immutable afterwards; dispatch is by name.
type Registry struct {
	tools map[string]schema.Tool
	order []string // registration order, for a stable manifest
}

// NewRegistry creates a Registry containing the given tools.
func NewRegistry(ts ...schema.Tool) *Registry {
	r := &Registry{tools: make(map[string]schema.Tool, len(ts))}
	for _, t := range ts {
		r.Add(t)
	}
	return r
}

// Get returns the tool with the given name, or nil if not found.
func (r *Registry) Get(name string) schema.Tool {
	return r.tools[name]
}

// Add registers a tool, replacing any existing tool with the same name.
func (r *Registry) Add(t schema.Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Definitions returns the capability manifest in registration order.
func (r *Registry) Definitions() []schema.ToolDefinition {
	defs := make([]schema.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, schema.Definition(r.tools[name]))
	}
	return defs
}

// MissingRequired returns the declared required fields of the named
// tool that are absent from args. Unknown tool names and unparsable
// schemas yield no requirements.
func (r *Registry) MissingRequired(name string, args map[string]any) []string {
	t := r.tools[name]
	if t == nil {
		return nil
	}
	var spec struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(t.Parameters(), &spec); err != nil {
		return nil
	}
	var missing []string
	for _, field := range spec.Required {
		if _, ok := args[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}
