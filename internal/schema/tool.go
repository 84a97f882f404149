// Package schema contains the core contracts shared across shopsage
// packages: the conversation transcript, the model provider boundary,
// and the tool (capability) interface. Concrete implementations live in
// their respective packages.
package schema

import (
	"context"
	"encoding/json"
)

// ToolDefinition is one entry of the model-facing capability manifest.
type ToolDefinition struct {
	Name        string
	Description string
	// Parameters is the JSON Schema (raw JSON bytes) for the tool's arguments.
	Parameters json.RawMessage
}

// Tool is the interface every model-callable capability must satisfy.
// Execute returns a JSON-encoded payload; domain failures are reported
// inside the payload ({"success":false,...}), a non-nil error is
// reserved for unexpected execution failures.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// Definition builds the manifest entry for a tool.
func Definition(t Tool) ToolDefinition {
	return ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
