package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/utils"
	contextutils "github.com/danilofalcao/torchserve-gateway/internal/utils/context"
	logutils "github.com/danilofalcao/torchserve-gateway/internal/utils/logger"
)

const RequestIDHeader = "X-Request-ID"

// withContext takes the server's context including its logger, injects a request ID and
// timeout, and sets it as the request's context. The request context stays the
// parent so a client disconnect still cancels in-flight backend calls.
func withContext(srvCtx context.Context, next http.Handler, timeout time.Duration, ids utils.IDGenerator) http.Handler {
	if ids == nil {
		ids = utils.GenerateRequestID
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logutils.ContextWithLogger(r.Context(), logutils.FromContext(srvCtx))
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = ids()
		}
		ctx = contextutils.WithRequestID(ctx, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
