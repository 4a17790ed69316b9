package v1

// GenerateRequest represents a raw-prompt request to the Ollama generate API
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Raw    bool   `json:"raw"`
	Stream bool   `json:"stream"`
}

// GenerateResponse represents a non-streamed response from the Ollama generate API
type GenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// ShowRequest asks for the details of a single model
type ShowRequest struct {
	Model string `json:"model"`
}

// TagsResponse represents the response from the Ollama /api/tags endpoint
type TagsResponse struct {
	Models []Model `json:"models"`
}

// Model represents a single model in the Ollama tags response
type Model struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
}
