package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/utils"
)

type ApiKeyValidationFunc func(string) bool
type Params struct {
	ApiKey         string
	AuthValidation ApiKeyValidationFunc
	Timeout        time.Duration
	AllowedOrigins []string
	RequestIDs     utils.IDGenerator
}

func Wrap(ctx context.Context, handler http.Handler, params Params) http.Handler {
	// These middlewares will be executed in the reverse order of their
	// wrapping. i.e. the last wrap operation will be the first one executed
	// on a request.
	if params.ApiKey != "" {
		validate := params.AuthValidation
		if validate == nil {
			validate = func(key string) bool { return utils.SecureCompareString(key, params.ApiKey) }
		}
		handler = withApiKeyAuth(handler, validate)
	}
	handler = withCors(handler, params.AllowedOrigins)
	handler = withLogging(handler)
	handler = withContext(ctx, handler, params.Timeout, params.RequestIDs)
	return handler
}
