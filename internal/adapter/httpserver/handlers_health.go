package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moviedata/reception/internal/platform/version"
	"golang.org/x/sync/errgroup"
)

const (
	startupCheckTimeout   = 2 * time.Second
	readinessCheckTimeout = 5 * time.Second
)

// HealthCheck probes one dependency of the reception API.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	return s.writeHealthReport(c, startupCheckTimeout)
}

func (s *Server) handleReadiness(c echo.Context) error {
	return s.writeHealthReport(c, readinessCheckTimeout)
}

// handleLiveness never consults dependencies; an open classifier breaker
// must not get the process restarted.
func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status":  "ok",
		"uptime":  time.Since(s.startTime).Seconds(),
		"storage": s.app.StorageEnabled(),
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

func (s *Server) writeHealthReport(c echo.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	report := s.checkHealth(ctx)
	status := http.StatusOK
	if report.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	if err := c.JSON(status, report); err != nil {
		return fmt.Errorf("failed to write health response: %w", err)
	}
	return nil
}

// checkHealth runs every check concurrently and reports each outcome, so a
// degraded classifier and a down cache show up in the same response.
func (s *Server) checkHealth(ctx context.Context) healthReport {
	results := make([]error, len(s.healthChecks))

	var g errgroup.Group
	for i, hc := range s.healthChecks {
		g.Go(func() error {
			results[i] = hc.Check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	report := healthReport{Status: "ready", Checks: make(map[string]string, len(results))}
	for i, err := range results {
		name := s.healthChecks[i].Name
		if err != nil {
			report.Status = "unhealthy"
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
