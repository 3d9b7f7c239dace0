package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 10 * time.Second
	idleTimeout            = 60 * time.Second
)

// Server serves the document API.
type Server struct {
	gen             DocumentGenerator
	logger          *zap.Logger
	observer        HTTPObserver
	metrics         http.Handler
	limiter         *rate.Limiter
	now             func() time.Time
	shutdownTimeout time.Duration

	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver reports every request by route and status.
func WithObserver(o HTTPObserver) Option {
	return func(s *Server) {
		s.observer = o
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRateLimit limits generate requests to rps with the given burst.
// rps <= 0 disables limiting. Panics if burst < 1 while limiting.
func WithRateLimit(rps float64, burst int) Option {
	if rps > 0 && burst < 1 {
		panic("httpapi: WithRateLimit burst must be at least 1")
	}
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithShutdownTimeout bounds the graceful drain. Panics if d <= 0.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("httpapi: WithShutdownTimeout duration must be positive")
	}
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithClock overrides the health timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New builds the API server. Panics if gen is nil.
func New(gen DocumentGenerator, opts ...Option) *Server {
	if gen == nil {
		panic("httpapi: New called with nil generator")
	}
	s := &Server{
		gen:             gen,
		logger:          zap.NewNop(),
		now:             time.Now,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /documents/generate", rateLimit(s.limiter)(http.HandlerFunc(s.handleGenerate)))
	mux.HandleFunc("GET /documents/templates", s.handleTemplates)
	mux.HandleFunc("GET /documents/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	return chain(mux,
		withRequestID,
		accessLog(s.logger, s.observer),
		recoverPanics(s.logger),
	)
}

// Serve accepts connections on ln until ctx is done, then drains in-flight
// requests for at most the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server draining", zap.Duration("timeout", s.shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}
