package cmd

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/server"
	"github.com/danilofalcao/torchserve-gateway/internal/server/logger"
	"github.com/stretchr/testify/require"
)

func newIdleServer(t *testing.T, exitCh chan string) *server.Server {
	t.Helper()
	cfg := &config{Backend: "torchserve", BackendTimeout: time.Second}
	svr, err := server.New(context.Background(), server.Options{
		Port:    "0",
		Backend: getBackend(cfg),
		Logger:  logger.New(context.Background(), "test", logger.ERROR, exitCh).WithWriter(io.Discard),
		ExitCh:  exitCh,
	})
	require.NoError(t, err)
	return svr
}

func TestServeReturnsFatalMessage(t *testing.T) {
	exitCh := make(chan string, 1)
	svr := newIdleServer(t, exitCh)
	exitCh <- "boom"

	err := serve(context.Background(), svr, exitCh)
	require.EqualError(t, err, "killed with message boom")
}

func TestServeStopsCleanlyOnCancel(t *testing.T) {
	exitCh := make(chan string, 1)
	svr := newIdleServer(t, exitCh)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, serve(ctx, svr, exitCh))
}
