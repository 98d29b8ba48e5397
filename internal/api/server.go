// Package api exposes the TEME→ITRS engine and the Earth orientation store
// over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ZoussCity/stardome/internal/auth"
	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/health"
	"github.com/ZoussCity/stardome/internal/httputil"
	"github.com/ZoussCity/stardome/internal/metrics"
	"github.com/ZoussCity/stardome/internal/transform"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Engine *transform.Engine
	Pool   *transform.WorkerPool

	Store   *eop.Store
	Fetcher *eop.Fetcher
	Cache   *eop.Cache // optional

	Auth            auth.Config
	EOPFetchEnabled bool
	MaxPositions    int
	TrustProxy      bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(logger, deps),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler builds the routed handler with its middleware chain:
// metrics -> logging -> auth -> mux.
func NewHandler(logger *slog.Logger, deps Deps) http.Handler {
	if deps.Engine == nil {
		deps.Engine = transform.NewEngine(nil)
	}
	if deps.Pool == nil {
		deps.Pool = transform.NewWorkerPool(0, logger)
	}
	if deps.Store == nil {
		deps.Store = eop.NewStore()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(deps.Store))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/v1/transform/teme-itrs", transformHandler(logger, deps))
	mux.HandleFunc("GET /api/v1/transform/teme-itrs/matrix", matrixHandler(deps))

	mux.HandleFunc("GET /api/v1/eop/metadata", eopMetadataHandler(deps.Store))
	mux.HandleFunc("GET /api/v1/eop/orientation", eopOrientationHandler(deps.Store))
	mux.HandleFunc("POST /api/v1/eop/fetch", eopFetchHandler(logger, deps))

	var handler http.Handler = mux
	handler = auth.Middleware(deps.Auth)(handler)
	handler = loggingMiddleware(logger, deps.TrustProxy)(handler)
	handler = metrics.Middleware(handler)
	return handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
