package schema

import "context"

// ChatOptions configures a single model chat request.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// LLMResponse is the normalised response from the model client. A turn
// is terminal when ToolCalls is empty; otherwise the loop dispatches
// each call in order.
type LLMResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        map[string]int // "input_tokens", "output_tokens"
}

// HasToolCalls reports whether the response contains at least one tool call.
func (r LLMResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// LLMProvider is the model tool-call client: given the transcript and
// the capability manifest it returns either a final text turn or a set
// of requested invocations. A returned error is a transport/protocol
// failure, never a normal model turn.
type LLMProvider interface {
	Chat(ctx context.Context, messages Messages, tools []ToolDefinition, opts ChatOptions) (LLMResponse, error)
	DefaultModel() string
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
