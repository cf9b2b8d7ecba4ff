package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moviedata/reception/internal/domain"
	apperrors "github.com/moviedata/reception/internal/platform/errors"
)

type receptionRequest struct {
	Reviews []string `json:"reviews"`
}

// handleReception runs the engine on an ad-hoc batch. A batch without
// scorable reviews still answers 200 with the no-data profile.
func (s *Server) handleReception(c echo.Context) error {
	var req receptionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be a JSON object with a reviews array")
	}
	if req.Reviews == nil {
		return apperrors.ValidationError("reviews is required")
	}
	if len(req.Reviews) > s.config.MaxBatchReviews {
		return apperrors.ValidationError("too many reviews").
			WithField("max_reviews", s.config.MaxBatchReviews).
			WithField("got", len(req.Reviews))
	}

	profile := s.app.Analyze(c.Request().Context(), req.Reviews)
	if err := c.JSON(http.StatusOK, profile); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

type filmTypeResponse struct {
	FilmType    domain.FilmType `json:"film_type"`
	Description string          `json:"description"`
}

func (s *Server) handleFilmTypes(c echo.Context) error {
	types := make([]filmTypeResponse, 0, len(domain.FilmTypes))
	for _, t := range domain.FilmTypes {
		types = append(types, filmTypeResponse{FilmType: t, Description: t.Description()})
	}
	if err := c.JSON(http.StatusOK, types); err != nil {
		return fmt.Errorf("failed to write film types: %w", err)
	}
	return nil
}
