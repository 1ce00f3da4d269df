package models

// Role identifies the author type of a message in the run log.
type Role string

const (
	RoleHuman  Role = "human"
	RoleSystem Role = "system"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry in the append-only run log. Name carries the
// originating agent for ai messages and the tool call id for tool results.
type Message struct {
	Role      Role       `json:"role"`
	Name      string     `json:"name,omitempty"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// HumanMessage builds a human-role message.
func HumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// AgentMessage builds an ai-role message attributed to an agent.
func AgentMessage(agent, content string) Message {
	return Message{Role: RoleAI, Name: agent, Content: content}
}

// ToolMessage builds a tool-result message for a given call id.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Name: callID, Content: content}
}
