package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/backend"
	"github.com/danilofalcao/torchserve-gateway/internal/constants/gateway"
	"github.com/danilofalcao/torchserve-gateway/internal/server/logger"
	"github.com/danilofalcao/torchserve-gateway/internal/server/middleware"
	"github.com/danilofalcao/torchserve-gateway/internal/utils"
	logutils "github.com/danilofalcao/torchserve-gateway/internal/utils/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"golang.org/x/net/http2"
)

// Options configures the server
type Options struct {
	Port           string
	Backend        backend.Backend
	LogLevel       string
	Logger         *logger.Logger
	ApiKey         string
	AllowedOrigins []string
	Timeout        string
	ExitCh         chan string

	// IDGenerator supplies request, sender and recipient ids. Defaults to
	// random UUIDs.
	IDGenerator utils.IDGenerator
}

// Server represents the API server
type Server struct {
	ctx            context.Context
	port           string
	backend        backend.Backend
	apikey         string
	allowedOrigins []string
	timeout        time.Duration
	exitCh         chan string
	newID          utils.IDGenerator
	srv            *http.Server
}

// New creates a new server instance
func New(ctx context.Context, opts Options) (*Server, error) {
	// Requests derive from this context; shutdown must drain them, not cancel them.
	ctx = context.WithoutCancel(ctx)

	// set up the server's logger
	lgr := opts.Logger
	if lgr == nil {
		lgr = logger.New(
			ctx,
			"server",
			logger.LevelFromString(opts.LogLevel),
			opts.ExitCh,
		)
	}
	ctx = logutils.ContextWithLogger(ctx, lgr)

	if opts.Timeout == "" {
		opts.Timeout = gateway.DefaultRequestTimeout
	}
	timeout, err := time.ParseDuration(opts.Timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timeout %q", opts.Timeout)
	}

	if opts.Port == "" {
		return nil, errors.New("port is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = utils.GenerateID
	}

	s := &Server{
		ctx:            ctx,
		port:           opts.Port,
		backend:        opts.Backend,
		apikey:         opts.ApiKey,
		allowedOrigins: opts.AllowedOrigins,
		timeout:        timeout,
		exitCh:         opts.ExitCh,
		newID:          opts.IDGenerator,
	}
	s.srv = &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	// Enable HTTP/2 support
	if err := http2.ConfigureServer(s.srv, &http2.Server{}); err != nil {
		return nil, errors.Wrap(err, "error configuring HTTP/2")
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler of the gateway
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Register routes
	r.Get("/", s.handleRoot)
	r.Route(gateway.APIPrefix, func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/models", s.handleModels)
		r.Get("/models/{model_name}", s.handleModelInfo)
		r.Post("/predictions/{model_name}/chat", s.handleChat)
	})

	// Create server with middleware
	return middleware.Wrap(s.ctx, r, middleware.Params{
		ApiKey:         s.apikey,
		Timeout:        s.timeout,
		AllowedOrigins: s.allowedOrigins,
		RequestIDs:     s.newID,
	})
}

// Start listens on the configured port and blocks until the server stops
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "error listening on port %s", s.port)
	}
	return s.Serve(l)
}

// Serve accepts connections on l and blocks until the server stops
func (s *Server) Serve(l net.Listener) error {
	logutils.FromContext(s.ctx).Infof(s.ctx, "Starting server on %s with %s backend", l.Addr(), s.backend.Name())
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	logutils.FromContext(s.ctx).Info(s.ctx, "Shutting down server")
	return s.srv.Shutdown(ctx)
}
