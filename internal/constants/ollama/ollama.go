package ollama

import "time"

const (
	DefaultEndpoint = "http://127.0.0.1:11434"
	DefaultTimeout  = 2 * time.Minute
)
