package torchserve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	torchserve "github.com/danilofalcao/torchserve-gateway/internal/api/torchserve/v1"
	"github.com/danilofalcao/torchserve-gateway/internal/backend"
	"github.com/danilofalcao/torchserve-gateway/internal/backend/util"
	constants "github.com/danilofalcao/torchserve-gateway/internal/constants/torchserve"
	logutils "github.com/danilofalcao/torchserve-gateway/internal/utils/logger"
	"github.com/pkg/errors"
)

var _ backend.Backend = &torchserveBackend{}

type torchserveBackend struct {
	inferenceEndpoint  string
	managementEndpoint string
	timeout            time.Duration
	client             *http.Client
}

type Options struct {
	InferenceEndpoint  string
	ManagementEndpoint string

	// Timeout bounds each backend call.
	Timeout time.Duration

	// Client defaults to a pooled client shared by all calls.
	Client *http.Client
}

func NewTorchserveBackend(opts Options) backend.Backend {
	b := &torchserveBackend{
		inferenceEndpoint:  opts.InferenceEndpoint,
		managementEndpoint: opts.ManagementEndpoint,
		timeout:            opts.Timeout,
		client:             opts.Client,
	}
	if b.inferenceEndpoint == "" {
		b.inferenceEndpoint = constants.DefaultInferenceEndpoint
	}
	if b.managementEndpoint == "" {
		b.managementEndpoint = constants.DefaultManagementEndpoint
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
func (b *torchserveBackend) Name() string {
	return "torchserve"
}

func (b *torchserveBackend) HealthCheck(ctx context.Context) (json.RawMessage, error) {
	return b.getJSON(ctx, "health check", "", util.JoinURL(b.inferenceEndpoint, constants.PingPath))
}

func (b *torchserveBackend) ListModels(ctx context.Context) (json.RawMessage, error) {
	return b.getJSON(ctx, "list models", "", util.JoinURL(b.managementEndpoint, constants.ModelsPath))
}

func (b *torchserveBackend) ModelInfo(ctx context.Context, model string) ([]torchserve.ModelDetail, error) {
	const op = "model info"
	raw, err := b.getJSON(ctx, op, model,
		util.JoinURL(b.managementEndpoint, constants.ModelsPath, url.PathEscape(model)))
	if err != nil {
		return nil, err
	}

	var details []torchserve.ModelDetail
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, backend.Failure(op, model, 0, errors.Wrap(err, "error decoding model description"))
	}
	return details, nil
}

func (b *torchserveBackend) Predict(ctx context.Context, model, prompt string) (*torchserve.GeneratedText, error) {
	const op = "predict"
	lgr, ctx := logutils.FromContext(ctx).Clone(ctx, b.Name())

	target := util.JoinURL(b.inferenceEndpoint, constants.PredictionsPath, url.PathEscape(model))
	lgr.Debugf(ctx, "POST %s (%d prompt bytes)", target, len(prompt))

	res, err := util.Do(ctx, b.client, b.timeout, http.MethodPost, target,
		[]torchserve.PredictionInput{{Text: prompt}})
	if err != nil {
		return nil, backend.Failure(op, model, 0, err)
	}
	if err := classify(op, model, res); err != nil {
		return nil, err
	}

	lgr.Tracef(ctx, "prediction body: %s", util.TruncateString(string(res.Body), 2048))
	generated, err := decodeGeneratedText(res.Body)
	if err != nil {
		return nil, backend.Failure(op, model, res.Status, err)
	}
	return generated, nil
}

func (b *torchserveBackend) getJSON(ctx context.Context, op, model, target string) (json.RawMessage, error) {
	logutils.FromContext(ctx).Debugf(ctx, "GET %s", target)

	res, err := util.Do(ctx, b.client, b.timeout, http.MethodGet, target, nil)
	if err != nil {
		return nil, backend.Failure(op, model, 0, err)
	}
	if err := classify(op, model, res); err != nil {
		return nil, err
	}
	if !json.Valid(res.Body) {
		return nil, backend.Failure(op, model, res.Status, errors.New("upstream returned a non-JSON body"))
	}
	return json.RawMessage(res.Body), nil
}

// classify turns a non-2xx exchange into a typed error. Only a 404 on a
// model-scoped call means the model is missing.
func classify(op, model string, res *util.Result) error {
	if res.OK() {
		return nil
	}
	if res.Status == http.StatusNotFound && model != "" {
		return backend.NotFound(op, model)
	}
	return backend.Failure(op, model, res.Status, res.StatusError())
}
