// Package httpserver exposes the reception engine and stored films over HTTP.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moviedata/reception/internal/adapter/metrics"
	"github.com/moviedata/reception/internal/domain"
	"github.com/moviedata/reception/internal/platform/config"
)

type appService interface {
	Analyze(ctx context.Context, reviews []string) domain.ReceptionProfile
	StorageEnabled() bool
	GetFilm(ctx context.Context, id int64) (*domain.Film, error)
	ListFilms(ctx context.Context, filmType domain.FilmType) ([]domain.Film, error)
	ImportFilm(ctx context.Context, title, url string, reviews []string) (*domain.Film, error)
	AnalyzeFilm(ctx context.Context, id int64) (*domain.Film, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	app    appService

	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

// NewServer wires routes. httpMetrics and metricsHandler may be nil.
func NewServer(cfg *config.Config, app appService, httpMetrics *metrics.HTTPMetrics, metricsHandler http.Handler, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		app:            app,
		httpMetrics:    httpMetrics,
		metricsHandler: metricsHandler,
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP lets tests drive the full middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
