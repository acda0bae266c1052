package ai

// MessageRole identifies the author of a message in a conversation.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single role-tagged message sent to or received from a model.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest represents a request to send a chat message.
type ChatRequest struct {
	Model       string    `json:"model,omitempty"`       // Model name or identifier
	Messages    []Message `json:"messages"`              // Full ordered conversation, system prompt included
	Temperature float32   `json:"temperature,omitempty"` // Sampling temperature [0..2]
	MaxTokens   int       `json:"max_tokens,omitempty"`  // Optional cap on response tokens
}

// Usage reports token consumption for a single completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion.
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}
