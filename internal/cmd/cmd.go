package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/backend"
	"github.com/danilofalcao/torchserve-gateway/internal/backend/ollama"
	"github.com/danilofalcao/torchserve-gateway/internal/backend/torchserve"
	"github.com/danilofalcao/torchserve-gateway/internal/constants/gateway"
	"github.com/danilofalcao/torchserve-gateway/internal/server"
	"github.com/danilofalcao/torchserve-gateway/internal/server/logger"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func Run() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns its error so deferred cleanup such as closing the log file
// happens before Run exits.
func run() error {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "sets the config file location e.g. $HOME/gateway-config.yaml")
	flags.StringP("port", "p", gateway.DefaultPort, "port to listen on")
	flags.String("log-level", "info", "trace, debug, info, warn, error or fatal")
	flags.Parse(os.Args[1:])

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	cfg, err := loadConfig(newViper(flags, *configPath))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	exitCh := make(chan string, 1)

	lgr := logger.New(ctx, "server", logger.LevelFromString(cfg.Loglevel), exitCh)
	if cfg.LogFile != "" {
		var closer io.Closer
		lgr, closer = lgr.WithFile(cfg.LogFile)
		defer closer.Close()
	}

	svr, err := server.New(ctx, server.Options{
		Port:           cfg.Port,
		Backend:        getBackend(cfg),
		Logger:         lgr,
		ApiKey:         cfg.ApiKey,
		AllowedOrigins: cfg.AllowedOrigins,
		Timeout:        cfg.Timeout,
		ExitCh:         exitCh,
	})
	if err != nil {
		return errors.Wrap(err, "unable to start server")
	}

	return serve(ctx, svr, exitCh)
}

// serve runs svr until ctx is done or a fatal message arrives on exitCh, then
// drains in-flight requests.
func serve(ctx context.Context, svr *server.Server, exitCh chan string) error {
	go func() {
		if err := svr.Start(); err != nil {
			exitCh <- errors.Wrap(err, "server stopped").Error()
		}
	}()

	var err error
	select {
	case s := <-exitCh:
		err = errors.Errorf("killed with message %s", s)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if shutdownErr := svr.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("error shutting down: %v", shutdownErr)
	}
	return err
}

func getBackend(cfg *config) backend.Backend {
	switch cfg.Backend {
	case gateway.BackendOllama:
		return ollama.NewOllamaBackend(ollama.Options{
			Endpoint: cfg.Ollama.Endpoint,
			Models:   cfg.Ollama.Models,
			Timeout:  cfg.BackendTimeout,
		})
	default:
		return torchserve.NewTorchserveBackend(torchserve.Options{
			InferenceEndpoint:  cfg.Torchserve.InferenceEndpoint,
			ManagementEndpoint: cfg.Torchserve.ManagementEndpoint,
			Timeout:            cfg.BackendTimeout,
		})
	}
}
