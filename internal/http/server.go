// Package http exposes the report API over HTTP.
package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prodboard/internal/log"
	"prodboard/internal/middleware/security"
	"prodboard/internal/middleware/trace"
)

// Options configures the HTTP surface.
type Options struct {
	Logger             *log.Logger
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	TrustedProxies     []string
	// Ready is consulted by /readyz when set.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	logger   *log.Logger
	ready    func(ctx context.Context) error
	draining atomic.Bool
}

// NewServer builds the router and wraps it in an http.Server bound to addr.
func NewServer(addr string, svc ReportService, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.TrustedProxies == nil {
		opts.TrustedProxies = security.DefaultTrustedProxies
	}
	if opts.RateLimitRequests <= 0 {
		opts.RateLimitRequests = 60
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}

	resolver, err := security.NewClientIPResolver(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger.WithComponent(log.ComponentHTTP),
		ready:  opts.Ready,
	}
	s.Handler = s.routes(svc, opts, resolver)
	return s, nil
}

func (s *Server) routes(svc ReportService, opts Options, resolver *security.ClientIPResolver) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(log.Middleware(s.logger))
	r.Use(trace.NewMiddleware(s.logger, resolver.ClientIP).Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(security.NewDetector(resolver.ClientIP).Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { NotFoundError().Write(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) { MethodNotAllowedError().Write(w) })

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.Limit(
			opts.RateLimitRequests,
			opts.RateLimitWindow,
			httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
				return resolver.ClientIP(r), nil
			}),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "too many requests").Write(w)
			}),
		))

		r.Post("/test-connection", h.testConnection)
		r.Post("/dashboard-data", h.dashboard)
		r.Post("/full-report", h.fullReport)
		r.Post("/full-report/export", h.exportFullReport)
		r.Post("/filtered-report", h.filteredReport)
		r.Post("/latest-activities", h.latestActivities)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		ErrorResponse(http.StatusServiceUnavailable, CodeUnavailable, "shutting down").Write(w)
		return
	}
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			ErrorResponse(http.StatusServiceUnavailable, CodeUnavailable, err.Error()).Write(w)
			return
		}
	}
	NewJSONResponse().Payload(map[string]string{"status": "ready"}).Write(w)
}

// Shutdown marks the server as not ready and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.draining.Store(true)
	s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
	return s.Server.Shutdown(ctx)
}
