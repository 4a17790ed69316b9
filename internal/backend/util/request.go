package util

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/danilofalcao/torchserve-gateway/internal/backend"

// JoinURL joins an endpoint and a relative path with exactly one slash.
func JoinURL(endpoint string, parts ...string) string {
	u := strings.TrimRight(endpoint, "/")
	for _, p := range parts {
		u += "/" + strings.Trim(p, "/")
	}
	return u
}

// Result is a completed upstream exchange.
type Result struct {
	Status int
	Body   []byte
}

// Do performs one upstream call bounded by timeout and returns the decoded
// body. The response body is always closed before Do returns. A non-nil error
// means no usable response was received.
func Do(ctx context.Context, client *http.Client, timeout time.Duration, method, url string, payload any) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, method+" "+url,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, recordErr(span, errors.Wrap(err, "error marshalling request"))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, recordErr(span, errors.Wrap(err, "error creating request"))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, recordErr(span, errors.Wrapf(err, "error calling %s", url))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	b, err := ReadResponse(resp)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return &Result{Status: resp.StatusCode, Body: b}, nil
}

// OK reports whether the exchange ended with a 2xx status.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// StatusError describes a non-2xx exchange, including a prefix of its body.
func (r *Result) StatusError() error {
	return errors.Errorf("upstream returned %d %s: %s",
		r.Status, http.StatusText(r.Status), TruncateString(strings.TrimSpace(string(r.Body)), 512))
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
