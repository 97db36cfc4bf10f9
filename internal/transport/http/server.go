// Package http exposes the survey platform over REST: agent operations,
// survey lifecycle, response intake, insights and health. Handlers stay
// thin; domain rules live in the orchestrator and the repositories.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/srv"
)

const (
	// requestTimeout bounds one orchestrated call end to end; provider
	// clients carry their own matching timeout.
	requestTimeout = 120 * time.Second

	readTimeout     = 30 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	srv *http.Server
}

var _ srv.Service = (*Server)(nil)

// NewServer assembles the router and binds it to the configured address.
// ctx carries the process logger; every request context derives from it.
func NewServer(ctx context.Context, cfg *config.AppConfig, h *Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:        cfg.HTTPAddr,
			Handler:     newRouter(ctx, h),
			ReadTimeout: readTimeout,
			IdleTimeout: idleTimeout,
		},
	}
}

func newRouter(ctx context.Context, h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger(ctx))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/healthz", h.health)

	r.Route("/agents", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/quality-check", h.qualityCheck)
			r.Post("/improve-question", h.improveQuestion)
			r.Post("/generate-variants", h.generateVariants)
			r.Post("/suggest-questions", h.suggestQuestions)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireDoctor)
			r.Post("/clarify", h.clarify)
			r.Get("/progress", h.progress)
			r.Post("/completion-summary", h.completionSummary)
			r.Post("/save-progress", h.saveProgress)
			r.Get("/restore/{sessionID}", h.restoreSession)
		})
	})

	r.Route("/surveys", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.createSurvey)
		r.Get("/", h.listSurveys)
		r.Get("/{surveyID}", h.getSurvey)
		r.Patch("/{surveyID}", h.updateSurvey)
		r.Delete("/{surveyID}", h.deleteSurvey)
		r.Post("/{surveyID}/launch", h.launchSurvey)
		r.Post("/{surveyID}/close", h.closeSurvey)
		r.Get("/{surveyID}/responses", h.listSurveyResponses)
	})

	r.Route("/responses", func(r chi.Router) {
		r.Use(requireDoctor)
		r.Post("/", h.submitResponse)
		r.Get("/{responseID}", h.getResponse)
	})

	r.Route("/insights", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/{surveyID}", h.getInsights)
		r.Post("/{surveyID}/trigger", h.triggerInsights)
	})

	return r
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting http server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests on its own deadline; the context it
// receives is already cancelled by the time the lifecycle calls it.
func (s *Server) Shutdown(context.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// requestLogger attaches the process logger to the request context and
// writes one line per completed request.
func requestLogger(base context.Context) func(http.Handler) http.Handler {
	logger := log.FromCtx(base)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(started)).
				Msg("request")
		})
	}
}
