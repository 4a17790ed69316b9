package torchserve

import "time"

const (
	// DefaultInferenceEndpoint and DefaultManagementEndpoint are the ports the
	// model server container exposes.
	DefaultInferenceEndpoint  = "http://127.0.0.1:8085"
	DefaultManagementEndpoint = "http://127.0.0.1:8086"

	DefaultTimeout = 30 * time.Second

	PingPath        = "ping"
	ModelsPath      = "models"
	PredictionsPath = "predictions"
)
