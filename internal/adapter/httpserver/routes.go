package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const maxRequestBody = "4M"

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	if s.httpMetrics != nil {
		s.echo.Use(s.httpMetrics.Middleware())
	}
	s.echo.Use(ErrorHandlingMiddleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "no-referrer",
	}))
	s.echo.Use(middleware.BodyLimit(maxRequestBody))

	s.registerHealthRoutes()
	if s.metricsHandler != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}

	api := s.echo.Group("/api")
	api.GET("/film-types", s.handleFilmTypes)

	limiter := newRateLimiter(s.config.APIRateLimit, s.config.APIBurst)
	api.POST("/reception", s.handleReception, limiter)

	if s.app.StorageEnabled() {
		s.registerFilmRoutes(api, limiter)
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
