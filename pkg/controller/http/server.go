package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/riskmap/pkg/service/worker"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

type Server struct {
	router   *chi.Mux
	analysis AnalysisUseCase
	status   func() worker.RefreshStatus
	version  string
}

type Options func(*Server)

// WithRefreshStatus exposes the refresh worker state on the health endpoint
func WithRefreshStatus(status func() worker.RefreshStatus) Options {
	return func(s *Server) {
		s.status = status
	}
}

func WithVersion(version string) Options {
	return func(s *Server) {
		s.version = version
	}
}

func New(analysis AnalysisUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		analysis: analysis,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.healthHandler)

	r.Route("/api/analysis", func(r chi.Router) {
		r.Get("/", s.reportHandler)
		r.Get("/exposure", s.exposureHandler)
		r.Get("/influence", s.influenceHandler)
		r.Get("/coverage", s.coverageHandler)
		r.Get("/coverage/gaps", s.gapsHandler)
		r.Get("/stats", s.statsHandler)
		r.Post("/refresh", s.refreshHandler)
	})

	r.Get("/api/risks/{id}/coverage", s.riskDetailsHandler)
	r.Get("/api/mitigations/{id}/coverage", s.mitigationDetailsHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Error: "not found"})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests and binds a
// request scoped logger to the context
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
