package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type AgentMessage struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// HasToolCalls reports whether the turn asks for at least one tool to run.
func (m AgentMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name,omitempty"`
	Content    string `json:"content"`
}

type AgentRequest struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

type AgentResponse struct {
	ThreadID string         `json:"thread_id"`
	Reply    string         `json:"reply"`
	Messages []AgentMessage `json:"messages"`
}

type ThreadResponse struct {
	ThreadID string         `json:"thread_id"`
	Greeting string         `json:"greeting,omitempty"`
	Messages []AgentMessage `json:"messages"`
}

// ChatFrame is exchanged over the chat websocket. Clients send frames with
// only Message set; the server answers with token, done or error frames.
type ChatFrame struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	FrameToken = "token"
	FrameDone  = "done"
	FrameError = "error"
)
