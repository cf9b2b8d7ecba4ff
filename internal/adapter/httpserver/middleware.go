package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moviedata/reception/internal/platform/correlation"
	apperrors "github.com/moviedata/reception/internal/platform/errors"
)

// correlationMiddleware adopts an inbound X-Correlation-ID or mints one, and
// echoes it on the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.HeaderName))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.HeaderName, id)
		return next(c)
	}
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			if httpErr, ok := errors.AsType[*echo.HTTPError](err); ok {
				return writeError(c, httpErr.Code, WrapHTTPError(httpErr))
			}
			return HandleError(c, err)
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeConflict, apperrors.TypeUnavailable:
		slog.WarnContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	structuredErr := apperrors.AsStructuredError(err)
	return writeError(c, structuredErr.HTTPStatus(), structuredErr)
}

func writeError(c echo.Context, status int, err *apperrors.Error) error {
	logError(c, err)
	if c.Response().Committed {
		return nil
	}
	if err := c.JSON(status, err.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

// WrapHTTPError converts echo's own errors (unknown route, 405, 413, bind
// failures) into the structured shape. The original status code is kept.
func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var errType apperrors.ErrorType
	switch {
	case httpErr.Code == http.StatusNotFound:
		errType = apperrors.TypeNotFound
	case httpErr.Code == http.StatusConflict:
		errType = apperrors.TypeConflict
	case httpErr.Code == http.StatusServiceUnavailable:
		errType = apperrors.TypeUnavailable
	case httpErr.Code == http.StatusBadGateway:
		errType = apperrors.TypeExternal
	case httpErr.Code >= 400 && httpErr.Code < 500:
		errType = apperrors.TypeValidation
	default:
		errType = apperrors.TypeInternal
	}

	err := &apperrors.Error{Type: errType, Message: message}
	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}
	return err
}
