package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	ollama "github.com/danilofalcao/torchserve-gateway/internal/api/ollama/v1"
	torchserve "github.com/danilofalcao/torchserve-gateway/internal/api/torchserve/v1"
	"github.com/danilofalcao/torchserve-gateway/internal/backend"
	"github.com/danilofalcao/torchserve-gateway/internal/backend/util"
	constants "github.com/danilofalcao/torchserve-gateway/internal/constants/ollama"
	logutils "github.com/danilofalcao/torchserve-gateway/internal/utils/logger"
	"github.com/pkg/errors"
)

var _ backend.Backend = &ollamaBackend{}

type ollamaBackend struct {
	endpoint string
	models   map[string]string
	timeout  time.Duration
	client   *http.Client
}

type Options struct {
	Endpoint string

	// Models maps gateway model names to Ollama model tags. Unmapped names are
	// sent as-is.
	Models  map[string]string
	Timeout time.Duration
	Client  *http.Client
}

func NewOllamaBackend(opts Options) backend.Backend {
	b := &ollamaBackend{
		endpoint: opts.Endpoint,
		models:   opts.Models,
		timeout:  opts.Timeout,
		client:   opts.Client,
	}
	if b.endpoint == "" {
		b.endpoint = constants.DefaultEndpoint
	}
	if b.timeout <= 0 {
		b.timeout = constants.DefaultTimeout
	}
	if b.client == nil {
		b.client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return b
}

// Name returns the name of the backend
func (b *ollamaBackend) Name() string {
	return "ollama"
}

func (b *ollamaBackend) resolve(model string) string {
	if mapped, ok := b.models[model]; ok && mapped != "" {
		return mapped
	}
	return model
}

func (b *ollamaBackend) HealthCheck(ctx context.Context) (json.RawMessage, error) {
	const op = "health check"
	res, err := util.Do(ctx, b.client, b.timeout, http.MethodGet, util.JoinURL(b.endpoint, "api/version"), nil)
	if err != nil {
		return nil, backend.Failure(op, "", 0, err)
	}
	if !res.OK() {
		return nil, backend.Failure(op, "", res.Status, res.StatusError())
	}
	return json.RawMessage(res.Body), nil
}

// ListModels reports the local Ollama tags in the management listing shape.
func (b *ollamaBackend) ListModels(ctx context.Context) (json.RawMessage, error) {
	const op = "list models"
	res, err := util.Do(ctx, b.client, b.timeout, http.MethodGet, util.JoinURL(b.endpoint, "api/tags"), nil)
	if err != nil {
		return nil, backend.Failure(op, "", 0, err)
	}
	if !res.OK() {
		return nil, backend.Failure(op, "", res.Status, res.StatusError())
	}

	var tags ollama.TagsResponse
	if err := json.Unmarshal(res.Body, &tags); err != nil {
		return nil, backend.Failure(op, "", res.Status, errors.Wrap(err, "error decoding tags"))
	}
	listing := torchserve.ListModelsResponse{Models: make([]torchserve.ModelSummary, 0, len(tags.Models))}
	for _, m := range tags.Models {
		listing.Models = append(listing.Models, torchserve.ModelSummary{
			ModelName: m.Name,
			ModelURL:  m.Digest,
		})
	}
	out, err := json.Marshal(listing)
	if err != nil {
		return nil, backend.Failure(op, "", 0, errors.Wrap(err, "error encoding model listing"))
	}
	return out, nil
}

func (b *ollamaBackend) ModelInfo(ctx context.Context, model string) ([]torchserve.ModelDetail, error) {
	const op = "model info"
	res, err := util.Do(ctx, b.client, b.timeout, http.MethodPost, util.JoinURL(b.endpoint, "api/show"),
		ollama.ShowRequest{Model: b.resolve(model)})
	if err != nil {
		return nil, backend.Failure(op, model, 0, err)
	}
	if res.Status == http.StatusNotFound {
		return nil, backend.NotFound(op, model)
	}
	if !res.OK() {
		return nil, backend.Failure(op, model, res.Status, res.StatusError())
	}

	var show map[string]any
	if err := json.Unmarshal(res.Body, &show); err != nil {
		return nil, backend.Failure(op, model, res.Status, errors.Wrap(err, "error decoding model description"))
	}
	return []torchserve.ModelDetail{{
		ModelSummary: torchserve.ModelSummary{ModelName: model},
		Runtime:      b.Name(),
		MinWorkers:   1,
		MaxWorkers:   1,
		BatchSize:    1,
		Extra:        show,
	}}, nil
}

// Predict runs a raw (untemplated) generation: the prompt is already in the
// model's chat format.
func (b *ollamaBackend) Predict(ctx context.Context, model, prompt string) (*torchserve.GeneratedText, error) {
	const op = "predict"
	lgr, ctx := logutils.FromContext(ctx).Clone(ctx, b.Name())

	mapped := b.resolve(model)
	lgr.Debugf(ctx, "Model converted to: %s (original: %s)", mapped, model)

	res, err := util.Do(ctx, b.client, b.timeout, http.MethodPost, util.JoinURL(b.endpoint, "api/generate"),
		ollama.GenerateRequest{Model: mapped, Prompt: prompt, Raw: true})
	if err != nil {
		return nil, backend.Failure(op, model, 0, err)
	}
	if res.Status == http.StatusNotFound {
		return nil, backend.NotFound(op, model)
	}
	if !res.OK() {
		return nil, backend.Failure(op, model, res.Status, res.StatusError())
	}

	var gen ollama.GenerateResponse
	if err := json.Unmarshal(res.Body, &gen); err != nil {
		err = errors.Wrapf(err, "error unmarshaling response: %s", util.TruncateString(string(res.Body), 256))
		return nil, backend.Failure(op, model, res.Status, err)
	}
	return &torchserve.GeneratedText{GeneratedText: gen.Response}, nil
}
