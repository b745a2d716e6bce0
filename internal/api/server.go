// Package api exposes the journal calculators and dashboards over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"trading-journal/internal/insights"
	"trading-journal/internal/logging"
	"trading-journal/internal/pnl"
	"trading-journal/internal/store"
	"trading-journal/internal/streak"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RestDaysPerWeek int

	// RateLimit is requests per second per client under /api; 0 disables.
	RateLimit float64
	RateBurst int
}

// Deps are the collaborators the handlers call into. Store and Insights may
// be nil, in which case only the calculator routes are served.
type Deps struct {
	Store    store.DataStore
	Insights *insights.Service
	PnL      *pnl.Calculator
	Streaks  *streak.Calculator
	Logger   zerolog.Logger
}

// Server is the journal HTTP API.
type Server struct {
	cfg      Config
	deps     Deps
	router   *chi.Mux
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewServer creates a Server and registers its routes.
func NewServer(cfg Config, deps Deps) *Server {
	if deps.PnL == nil {
		deps.PnL = pnl.NewCalculator(nil)
	}
	if deps.Streaks == nil {
		deps.Streaks = streak.NewCalculator(nil, nil)
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		router:   chi.NewRouter(),
		validate: NewValidator(),
		logger:   deps.Logger.With().Str("component", "api").Logger(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(s.rateLimit(newClientLimiter(s.cfg.RateLimit, s.cfg.RateBurst)))
		}
		r.Route("/calc", func(r chi.Router) {
			r.Post("/streak", s.handleStreak)
			r.Post("/consistency", s.handleConsistency)
			r.Post("/pnl", s.handlePnL)
			r.Get("/level", s.handleLevel)
		})
		r.Get("/instruments", s.handleInstruments)

		if s.deps.Insights != nil {
			r.Get("/users/{userID}/dashboard", s.handleDashboard)
			r.Get("/users/{userID}/report", s.handleReport)
		}
		if s.deps.Store != nil {
			r.Post("/users/{userID}/checkins", s.handleCheckin)
		}
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info().Msg("api shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request with zerolog.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			reqLogger := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			r = r.WithContext(logging.WithLogger(r.Context(), reqLogger))

			defer func() {
				reqLogger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
