package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/api/rest/middleware"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/collection"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/observability"
)

// Config holds the REST server configuration.
type Config struct {
	Host        string
	Port        int
	CORSEnabled bool
	CORSOrigins []string
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
}

// Server is the HTTP front end over a collection.Manager: every route
// operates on collections built in-process, no separate backend
// process to dial.
type Server struct {
	config     Config
	handler    *Handler
	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer constructs a REST server over manager, emitting metrics
// through m and structured logs through log.
func NewServer(config Config, manager *collection.Manager, m *observability.Metrics, log *observability.Logger) *Server {
	handler := NewHandler(manager, m, log)

	server := &Server{
		config:  config,
		handler: handler,
		mux:     http.NewServeMux(),
	}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.withMiddleware(server.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// setupRoutes wires §6's REST surface onto Go 1.22+ ServeMux method
// patterns, so path parameters (collection name) come from
// r.PathValue instead of manual prefix trimming.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /v1/health", s.handler.HealthCheck)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /v1/collections", s.handler.CreateCollection)
	s.mux.HandleFunc("GET /v1/collections", s.handler.ListCollections)
	s.mux.HandleFunc("GET /v1/collections/{name}/stats", s.handler.CollectionStats)
	s.mux.HandleFunc("POST /v1/collections/{name}/objects", s.handler.InsertObject)
	s.mux.HandleFunc("POST /v1/collections/{name}/build", s.handler.BuildCollection)
	s.mux.HandleFunc("POST /v1/collections/{name}/search", s.handler.Search)
	s.mux.HandleFunc("POST /v1/collections/{name}/range-search", s.handler.RangeSearch)
}

// withMiddleware wraps the mux with the request pipeline, outermost
// first: authentication, then rate limiting, then CORS (when enabled),
// then logging.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	handler = s.loggingMiddleware(handler)

	if s.config.CORSEnabled {
		handler = corsMiddleware(s.config.CORSOrigins)(handler)
	}

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit)
	handler = middleware.RateLimitMiddleware(rateLimiter)(handler)
	handler = middleware.AuthMiddleware(s.config.Auth)(handler)

	return handler
}

// Handler returns the fully wrapped request handler (routes plus
// logging/CORS/rate-limit/auth middleware), for embedding in an
// httptest.Server without binding a real listening socket.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving; it blocks until the server is shut down.
func (s *Server) Start() error {
	s.handler.log.Infof("starting REST API server on %s:%d", s.config.Host, s.config.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.handler.log.Info("shutting down REST API server")
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs every request's method, path, status, and
// latency, and records the same triple into Prometheus.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		s.handler.metrics.RecordRequest(r.Pattern, fmt.Sprintf("%d", wrapped.statusCode), duration)
		s.handler.log.WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": duration.String(),
		}).Info("request")
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
// written, so logging/metrics middleware can see it after the handler
// returns.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers, allowing every origin when
// allowedOrigins is empty or "*".
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				allowed = true
				origin = "*"
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
