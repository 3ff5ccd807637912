// Package server exposes resume extraction and ranking over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/screening"
)

const shutdownTimeout = 10 * time.Second

// ResumeExtractor is the extraction operation served on /parse.
type ResumeExtractor interface {
	Extract(ctx context.Context, fileRef string) (*screening.ParsedResume, error)
}

// CandidateRanker is the ranking operation served on /rank.
type CandidateRanker interface {
	Rank(ctx context.Context, job screening.JobPosting, candidates []screening.CandidateProfile) ([]screening.RankingScore, error)
}

// Config holds the listener settings.
type Config struct {
	Address        string        `mapstructure:"address"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	WriteTimeout   time.Duration `mapstructure:"write-timeout"`
}

type Server struct {
	cfg    Config
	router chi.Router
	logger *zap.Logger
}

func New(cfg Config, extractor ResumeExtractor, ranker CandidateRanker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handlers{extractor: extractor, ranker: ranker, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", h.health("resume-rank"))

	r.Route("/parse", func(r chi.Router) {
		r.Get("/health", h.health("resume-parser"))
		r.Post("/", h.parse)
	})

	r.Route("/rank", func(r chi.Router) {
		r.Get("/health", h.health("ranking-agent"))
		r.Post("/", h.rank)
	})

	return &Server{cfg: cfg, router: r, logger: logger}
}

// Handler returns the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("address", s.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
