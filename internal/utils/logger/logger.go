package logutils

import (
	"context"

	"github.com/danilofalcao/torchserve-gateway/internal/constants"
	"github.com/danilofalcao/torchserve-gateway/internal/server/logger"
)

// FromContext retrieves the logger from the context, falling back to the
// package fallback logger so callers never get nil.
func FromContext(ctx context.Context) *logger.Logger {
	if lgr, ok := ctx.Value(constants.LoggerKey).(*logger.Logger); ok {
		return lgr
	}
	return logger.Fallback
}

// ContextWithLogger adds a logger to the context
func ContextWithLogger(ctx context.Context, lgr *logger.Logger) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, lgr)
}
