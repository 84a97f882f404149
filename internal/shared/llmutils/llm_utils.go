// Package llmutils holds small helpers shared by the agent loop and
// the user-facing surfaces.
package llmutils

import (
	"fmt"
	"strings"

	"github.com/shopsage/shopsage/internal/schema"
)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint generates a short progress hint for a list of tool calls,
// e.g. `execute_sql_query("SELECT category, AVG(price)...")`.
func ToolHint(tcs []schema.ToolCall) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		args := strings.TrimSpace(tc.Arguments)
		if args == "" || args == "{}" {
			parts = append(parts, tc.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", tc.Name, Truncate(args, 60)))
	}
	return strings.Join(parts, ", ")
}
