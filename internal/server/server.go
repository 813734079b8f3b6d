// Package server exposes the estimation engine over HTTP: stateless
// what-if endpoints that recompute the model per request, plus read access
// to stored assessments.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/store"
)

// Server holds what the handlers work against. The policy pack is
// immutable for the server's lifetime; what-if requests carry their own
// inputs.
type Server struct {
	pack *model.PolicyPack
	st   store.Store
}

// New returns the router for the what-if API. st may be nil, which
// disables the assessment endpoints.
func New(pack *model.PolicyPack, st store.Store, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(requestLogger)

	srv := &Server{pack: pack, st: st}

	r.Get("/health", srv.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/estimate", srv.handleEstimate)
		r.Post("/cost", srv.handleCost)
		r.Post("/goalseek", srv.handleGoalSeek)
		r.Post("/timeline", srv.handleTimeline)
		r.Get("/assessments", srv.handleListAssessments)
		r.Get("/assessments/{id}", srv.handleGetAssessment)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// requestLogger writes one line per completed request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
