package v1

import (
	"encoding/json"
)

// PredictionInput is one element of the batch POSTed to predictions/{model}
type PredictionInput struct {
	Text string `json:"text"`
}

// GeneratedText is the decoded output of a prediction
type GeneratedText struct {
	GeneratedText string `json:"generated_text"`
}

// ModelSummary is one entry of the management models listing
type ModelSummary struct {
	ModelName string `json:"modelName"`
	ModelURL  string `json:"modelUrl"`
}

// ListModelsResponse is the management models listing
type ListModelsResponse struct {
	NextPageToken string         `json:"nextPageToken,omitempty"`
	Models        []ModelSummary `json:"models"`
}

// ModelDetail describes a registered model version. Fields the gateway does
// not know about are kept in Extra.
type ModelDetail struct {
	ModelSummary
	ModelVersion    string         `json:"modelVersion"`
	Runtime         string         `json:"runtime"`
	MinWorkers      int            `json:"minWorkers"`
	MaxWorkers      int            `json:"maxWorkers"`
	BatchSize       int            `json:"batchSize"`
	MaxBatchDelay   int            `json:"maxBatchDelay"`
	LoadedAtStartup bool           `json:"loadedAtStartup"`
	Workers         []WorkerStatus `json:"workers"`
	JobQueueStatus  map[string]any `json:"jobQueueStatus,omitempty"`
	Extra           map[string]any `json:"-"`
}

// WorkerStatus describes one backend worker process
type WorkerStatus struct {
	ID          string         `json:"id"`
	StartTime   string         `json:"startTime"`
	Status      string         `json:"status"`
	MemoryUsage int64          `json:"memoryUsage"`
	PID         int            `json:"pid"`
	GPU         bool           `json:"gpu"`
	GPUUsage    string         `json:"gpuUsage"`
	Extra       map[string]any `json:"-"`
}

var modelDetailFields = []string{
	"modelName", "modelUrl", "modelVersion", "runtime", "minWorkers", "maxWorkers",
	"batchSize", "maxBatchDelay", "loadedAtStartup", "workers", "jobQueueStatus",
}

var workerStatusFields = []string{
	"id", "startTime", "status", "memoryUsage", "pid", "gpu", "gpuUsage",
}

func (m *ModelDetail) UnmarshalJSON(b []byte) error {
	type plain ModelDetail
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := extraFields(b, modelDetailFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*m = ModelDetail(p)
	return nil
}

func (m ModelDetail) MarshalJSON() ([]byte, error) {
	type plain ModelDetail
	return mergeExtra(plain(m), m.Extra)
}

func (w *WorkerStatus) UnmarshalJSON(b []byte) error {
	type plain WorkerStatus
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := extraFields(b, workerStatusFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*w = WorkerStatus(p)
	return nil
}

func (w WorkerStatus) MarshalJSON() ([]byte, error) {
	type plain WorkerStatus
	return mergeExtra(plain(w), w.Extra)
}

func extraFields(b []byte, known []string) (map[string]any, error) {
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func mergeExtra(v any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := all[k]; !ok {
			all[k] = val
		}
	}
	return json.Marshal(all)
}
