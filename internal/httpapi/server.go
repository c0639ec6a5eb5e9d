// Package httpapi exposes the browser-agent HTTP/SSE surface: starting and
// stopping agent runs, standalone code generation, and liveness/metrics
// endpoints. It is a standalone net/http mux rather than an extension of
// any other service's router, but follows the same server lifecycle shape
// (mux, middleware chain, graceful shutdown) used elsewhere in this repo.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfarerhq/pilot/internal/agentloop"
	"github.com/wayfarerhq/pilot/internal/codegen"
	"github.com/wayfarerhq/pilot/internal/config"
	"github.com/wayfarerhq/pilot/internal/sessionregistry"
	"github.com/wayfarerhq/pilot/internal/tools/browseragent"
)

// Server hosts the browser-agent API over plain net/http.
type Server struct {
	cfg    config.BrowserAgentConfig
	logger *slog.Logger

	sessions *sessionregistry.Registry
	tools    *browseragent.Registry
	codegen  *codegen.Generator

	tracer         *agentloop.Tracer
	tracerShutdown func(context.Context) error

	agentLimiter   *endpointLimiter
	codegenLimiter *endpointLimiter
	otherLimiter   *endpointLimiter

	startTime time.Time

	httpServer *http.Server
	listener   net.Listener
}

// New builds a Server from a configuration section. Pass a nil logger to
// get a discard logger. tracing controls the OpenTelemetry tracer shared by
// every agent run; a zero-value TracingConfig yields a no-op tracer.
func New(cfg config.BrowserAgentConfig, tracing config.TracingConfig, logger *slog.Logger) *Server {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tracer, tracerShutdown := agentloop.NewTracer(agentloop.TraceConfig{
		Endpoint:       tracing.Endpoint,
		ServiceName:    tracing.ServiceName,
		ServiceVersion: tracing.ServiceVersion,
		Environment:    tracing.Environment,
		SamplingRate:   tracing.SamplingRate,
		Insecure:       tracing.Insecure,
		Attributes:     tracing.Attributes,
	})
	return &Server{
		cfg:            cfg,
		logger:         logger,
		sessions:       sessionregistry.New(),
		tools:          browseragent.NewRegistry(),
		codegen:        codegen.New(),
		tracer:         tracer,
		tracerShutdown: tracerShutdown,
		agentLimiter:   newEndpointLimiter(cfg.RateLimits.AgentPerMinute),
		codegenLimiter: newEndpointLimiter(cfg.RateLimits.CodegenPerMinute),
		otherLimiter:   newEndpointLimiter(cfg.RateLimits.OtherPerMinute),
		startTime:      time.Now(),
	}
}

// mux builds the route table. Kept as a method (not a package func) so
// tests can exercise routes directly with httptest.NewRecorder without a
// bound listener.
func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/health", s.rateLimited(s.otherLimiter, s.handleHealth))
	mux.HandleFunc("/api/agent", s.rateLimited(s.agentLimiter, s.handleRunAgent))
	mux.HandleFunc("/api/agent/stop/", s.rateLimited(s.otherLimiter, s.handleStopSession))
	mux.HandleFunc("/api/agent/stop-all", s.rateLimited(s.otherLimiter, s.handleStopAll))
	mux.HandleFunc("/api/agent/sessions", s.rateLimited(s.otherLimiter, s.handleListSessions))
	mux.HandleFunc("/api/generate-code", s.rateLimited(s.codegenLimiter, s.handleGenerateCode))
	return mux
}

// rateLimited wraps a handler with a 429 guard keyed by client IP, using the
// endpoint class's own limiter.
func (s *Server) rateLimited(limiter *endpointLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !limiter.allow(clientIP(r)) {
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (s *Server) writeCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || !s.originAllowed(origin) {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.cfg.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Start binds the listener and serves in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpapi listen: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("httpapi server error", "error", err)
		}
	}()

	s.logger.Info("starting browser-agent http server", "addr", addr)
	return nil
}

// Shutdown gracefully stops the server, releasing the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx := ctx
	var cancel context.CancelFunc
	if shutdownCtx == nil {
		shutdownCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	err := s.httpServer.Shutdown(shutdownCtx)
	s.httpServer = nil
	s.listener = nil
	if s.tracerShutdown != nil {
		if tErr := s.tracerShutdown(shutdownCtx); tErr != nil && err == nil {
			err = tErr
		}
	}
	return err
}
