package backend

import (
	"context"
	"encoding/json"

	torchserve "github.com/danilofalcao/torchserve-gateway/internal/api/torchserve/v1"
)

// Backend defines the interface that every model server client must implement.
// Implementations return *Error (or an error wrapping one) so callers can tell
// a missing model apart from every other failure.
type Backend interface {
	// Name returns the name of the backend
	Name() string

	// HealthCheck returns the raw body of the inference health endpoint
	HealthCheck(ctx context.Context) (json.RawMessage, error)

	// ListModels returns the raw body of the management models listing
	ListModels(ctx context.Context) (json.RawMessage, error)

	// ModelInfo returns the detailed description of every version of model
	ModelInfo(ctx context.Context, model string) ([]torchserve.ModelDetail, error)

	// Predict sends prompt to model and returns the decoded generation
	Predict(ctx context.Context, model, prompt string) (*torchserve.GeneratedText, error)
}
