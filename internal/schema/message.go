package schema

// Message roles. The transcript is a discriminated union over these.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is one capability invocation requested by the model in an
// assistant turn. Arguments holds the raw JSON object string exactly as
// the model produced it; parsing is owned by the orchestration loop so
// a malformed mapping becomes a structured tool-result instead of
// failing the whole turn.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry in the conversation transcript.
//
// Role is one of: "system", "user", "assistant", "tool".
// ToolCalls is populated for assistant messages that invoke tools.
// ToolCallID and ToolName are set for tool-result messages.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // "tool" role only
	ToolName   string // "tool" role only
}

func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string, toolCalls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

func NewToolResultMessage(toolCallID, toolName, result string) Message {
	return Message{Role: RoleTool, Content: result, ToolCallID: toolCallID, ToolName: toolName}
}
