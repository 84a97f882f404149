// Package agent implements the tool-orchestration loop: the bounded
// conversation state machine that lets the model chain search, SQL and
// chart capabilities until it can produce a final answer.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopsage/shopsage/internal/schema"
	"github.com/shopsage/shopsage/internal/shared/llmutils"
	"github.com/shopsage/shopsage/internal/tools"
)

// DefaultMaxSteps bounds the number of model round-trips per query.
const DefaultMaxSteps = 5

const exhaustedMessage = "The agent could not fully resolve the query after multiple steps. " +
	"Please try rephrasing your query."

// Result is the outcome of one query: the final natural-language
// response and the capability names used along the way ("None" when no
// capability was invoked, otherwise sorted and comma-joined).
type Result struct {
	Response  string `json:"response"`
	ToolsUsed string `json:"tools_used"`
}

// Settings configures the loop for one Orchestrator.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	MaxSteps    int
}

// ProgressFunc receives short human-readable progress hints while a
// query runs. It never influences control flow.
type ProgressFunc func(string)

// Orchestrator drives the model ↔ capability conversation. It is
// stateless across queries: every Run gets its own transcript and loop
// state, so concurrent queries are independent.
type Orchestrator struct {
	provider schema.LLMProvider
	registry *tools.Registry
	settings Settings
}

// New creates an Orchestrator. A non-positive MaxSteps falls back to
// DefaultMaxSteps.
func New(provider schema.LLMProvider, registry *tools.Registry, settings Settings) *Orchestrator {
	if settings.MaxSteps <= 0 {
		settings.MaxSteps = DefaultMaxSteps
	}
	return &Orchestrator{provider: provider, registry: registry, settings: settings}
}

// Run answers one user query. It always returns a well-formed Result:
// transport failures from the model client and step-budget exhaustion
// end the loop early but still produce a response instead of an error.
func (o *Orchestrator) Run(ctx context.Context, userQuery string, onProgress ProgressFunc) Result {
	conversation := schema.NewMessages()
	conversation.AddSystem(systemPrompt())
	conversation.AddUser(userQuery)

	used := make(map[string]struct{})
	// Most recent successful execute_sql_query rows; overwritten (never
	// merged) on each success, so a chart only ever sees the latest.
	var lastRows []any

	opts := schema.NewChatOptions(o.settings.Model, o.settings.MaxTokens, o.settings.Temperature)

	for step := 1; step <= o.settings.MaxSteps; step++ {
		slog.Info("agent thinking", "step", step, "budget", o.settings.MaxSteps)
		if onProgress != nil {
			onProgress(fmt.Sprintf("thinking (step %d/%d)", step, o.settings.MaxSteps))
		}

		resp, err := o.provider.Chat(ctx, conversation, o.registry.Definitions(), opts)
		if err != nil {
			slog.Error("model call failed", "step", step, "err", err)
			return Result{
				Response:  fmt.Sprintf("An error occurred while calling the model: %v", err),
				ToolsUsed: joinUsed(used),
			}
		}

		if !resp.HasToolCalls() {
			return Result{Response: resp.Content, ToolsUsed: joinUsed(used)}
		}

		conversation.AddAssistant(resp.Content, resp.ToolCalls)
		if onProgress != nil {
			onProgress(llmutils.ToolHint(resp.ToolCalls))
		}

		// Invocations are resolved strictly in order: a later call in
		// the same turn may depend on rows recorded by an earlier one.
		for _, call := range resp.ToolCalls {
			used[call.Name] = struct{}{}
			payload := o.dispatch(ctx, call, &lastRows)
			conversation.AddToolResult(call.ID, call.Name, payload)
		}
	}

	return Result{Response: exhaustedMessage, ToolsUsed: joinUsed(used)}
}

// dispatch resolves one invocation to a normalised JSON payload. Every
// failure mode — unknown capability, malformed arguments, missing
// required fields, execution errors, invalid payloads — becomes a
// structured result so the model can see it and self-correct; nothing
// aborts the turn.
func (o *Orchestrator) dispatch(ctx context.Context, call schema.ToolCall, lastRows *[]any) string {
	tool := o.registry.Get(call.Name)
	if tool == nil {
		slog.Warn("unknown tool requested", "tool", call.Name)
		return tools.Errorf("tool %q not found", call.Name)
	}

	args := map[string]any{}
	if trimmed := strings.TrimSpace(call.Arguments); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			slog.Warn("argument parse failed", "tool", call.Name, "err", err)
			return tools.Errorf("error parsing arguments for tool %s: %v; arguments were: %s",
				call.Name, err, llmutils.Truncate(call.Arguments, 200))
		}
	}

	// The model routinely forgets to re-attach the exact row set from a
	// prior SQL result when asking for a chart; repair the call from
	// the most recent successful query instead of failing it.
	if call.Name == tools.NameGenerateChart {
		if _, ok := args["data"]; !ok {
			if *lastRows == nil {
				return tools.Errorf("missing 'data' argument for generate_chart and no previous SQL query data available")
			}
			slog.Info("injecting previous SQL result rows into generate_chart call", "rows", len(*lastRows))
			args["data"] = *lastRows
		}
	}

	if missing := o.registry.MissingRequired(call.Name, args); len(missing) > 0 {
		return tools.Errorf("missing required arguments for tool %s: %s",
			call.Name, strings.Join(missing, ", "))
	}

	payload := execute(ctx, tool, args)

	parsed := map[string]any{}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return tools.Errorf("tool %s returned an invalid JSON payload: %s",
			call.Name, llmutils.Truncate(payload, 200))
	}

	if call.Name == tools.NameExecuteSQLQuery {
		if ok, _ := parsed["success"].(bool); ok {
			if rows, isRows := parsed["data"].([]any); isRows {
				*lastRows = rows
			}
		}
	}

	return payload
}

// execute runs the capability, converting returned errors and panics
// into structured payloads so no failure crosses into the transcript
// as anything but a tool result.
func execute(ctx context.Context, tool schema.Tool, args map[string]any) (payload string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool panicked", "tool", tool.Name(), "panic", r)
			payload = tools.Errorf("error executing tool %s: %v", tool.Name(), r)
		}
	}()

	out, err := tool.Execute(ctx, args)
	if err != nil {
		slog.Error("tool execution failed", "tool", tool.Name(), "err", err)
		return tools.Errorf("error executing tool %s: %v", tool.Name(), err)
	}
	return out
}

func joinUsed(used map[string]struct{}) string {
	if len(used) == 0 {
		return "None"
	}
	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
