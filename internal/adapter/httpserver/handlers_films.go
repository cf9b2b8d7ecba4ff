package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moviedata/reception/internal/domain"
	apperrors "github.com/moviedata/reception/internal/platform/errors"
)

func (s *Server) registerFilmRoutes(api *echo.Group, limiter echo.MiddlewareFunc) {
	api.GET("/films", s.handleListFilms)
	api.POST("/films", s.handleImportFilm)
	api.GET("/films/:id", s.handleGetFilm)
	api.POST("/films/:id/reception", s.handleAnalyzeFilm, limiter)
}

type filmResponse struct {
	ID             int64                    `json:"id"`
	Title          string                   `json:"title"`
	URL            string                   `json:"url"`
	FilmType       domain.FilmType          `json:"film_type,omitempty"`
	PendingReviews int                      `json:"pending_reviews"`
	Profile        *domain.ReceptionProfile `json:"profile,omitempty"`
	AnalyzedAt     *time.Time               `json:"analyzed_at,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func toFilmResponse(f *domain.Film, withProfile bool) filmResponse {
	resp := filmResponse{
		ID:             f.ID,
		Title:          f.Title,
		URL:            f.URL,
		FilmType:       f.FilmType,
		PendingReviews: len(f.Reviews),
		AnalyzedAt:     f.AnalyzedAt,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
	if withProfile {
		resp.Profile = f.Profile
	}
	return resp
}

func filmError(err error, id int64) error {
	if errors.Is(err, domain.ErrFilmNotFound) {
		return apperrors.NotFoundError("film not found").WithField("film_id", id)
	}
	return apperrors.InternalError("film lookup failed", err).WithField("film_id", id)
}

func parseFilmID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.ValidationError("film id must be a positive integer")
	}
	return id, nil
}

func (s *Server) handleListFilms(c echo.Context) error {
	var filmType domain.FilmType
	if raw := strings.TrimSpace(c.QueryParam("film_type")); raw != "" {
		parsed, err := domain.ParseFilmType(raw)
		if err != nil {
			return apperrors.ValidationError("unknown film_type").WithField("film_type", raw)
		}
		filmType = parsed
	}

	films, err := s.app.ListFilms(c.Request().Context(), filmType)
	if err != nil {
		return apperrors.InternalError("failed to list films", err)
	}

	resp := make([]filmResponse, 0, len(films))
	for i := range films {
		resp = append(resp, toFilmResponse(&films[i], false))
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write films: %w", err)
	}
	return nil
}

func (s *Server) handleGetFilm(c echo.Context) error {
	id, err := parseFilmID(c)
	if err != nil {
		return err
	}

	film, err := s.app.GetFilm(c.Request().Context(), id)
	if err != nil {
		return filmError(err, id)
	}
	if err := c.JSON(http.StatusOK, toFilmResponse(film, true)); err != nil {
		return fmt.Errorf("failed to write film: %w", err)
	}
	return nil
}

type importFilmRequest struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Reviews []string `json:"reviews"`
}

func (s *Server) handleImportFilm(c echo.Context) error {
	var req importFilmRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be a JSON object")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return apperrors.ValidationError("title is required")
	}
	if len(req.Reviews) > s.config.MaxBatchReviews {
		return apperrors.ValidationError("too many reviews").WithField("max_reviews", s.config.MaxBatchReviews)
	}

	film, err := s.app.ImportFilm(c.Request().Context(), req.Title, strings.TrimSpace(req.URL), req.Reviews)
	if err != nil {
		return apperrors.InternalError("failed to store film", err)
	}
	if err := c.JSON(http.StatusCreated, toFilmResponse(film, false)); err != nil {
		return fmt.Errorf("failed to write film: %w", err)
	}
	return nil
}

func (s *Server) handleAnalyzeFilm(c echo.Context) error {
	id, err := parseFilmID(c)
	if err != nil {
		return err
	}

	film, err := s.app.AnalyzeFilm(c.Request().Context(), id)
	if err != nil {
		return filmError(err, id)
	}
	if err := c.JSON(http.StatusOK, toFilmResponse(film, true)); err != nil {
		return fmt.Errorf("failed to write film: %w", err)
	}
	return nil
}
