package v1

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCall is the body of a chat request. Metadata is passed through
// untouched.
type ChatCall struct {
	Sender   string         `json:"sender"`
	System   string         `json:"system"`
	Messages []Message      `json:"messages"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChatResponse is returned by the chat endpoint
type ChatResponse struct {
	RecipientID string    `json:"recipient_id"`
	Messages    []Message `json:"messages"`
}

// ErrorResponse is the body of every non-2xx gateway response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Root is the liveness stub body
type Root struct {
	Hello string `json:"Hello"`
}
