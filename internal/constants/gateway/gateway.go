package gateway

// Route prefix and fixed client-visible messages of the public API.
const (
	APIPrefix = "/api/v1/llm"

	BackendTorchserve = "torchserve"
	BackendOllama     = "ollama"

	DefaultPort           = "8000"
	DefaultRequestTimeout = "60s"

	EmptyGenerationDetail = "the model returned an empty generation"
)
