package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/moviedata/reception/internal/platform/correlation"
	apperrors "github.com/moviedata/reception/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareWithStructuredError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return apperrors.ValidationError("invalid input")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
}

func TestMiddlewareWithStandardError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return errors.New("standard error")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, rec.Body.String(), "standard error")
}

func TestMiddlewareWithHTTPError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"validation"`)
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		code int
		want apperrors.ErrorType
	}{
		{http.StatusNotFound, apperrors.TypeNotFound},
		{http.StatusMethodNotAllowed, apperrors.TypeValidation},
		{http.StatusConflict, apperrors.TypeConflict},
		{http.StatusServiceUnavailable, apperrors.TypeUnavailable},
		{http.StatusBadGateway, apperrors.TypeExternal},
		{http.StatusInternalServerError, apperrors.TypeInternal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := WrapHTTPError(echo.NewHTTPError(tt.code))
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, http.StatusText(tt.code), err.Message)
		})
	}

	custom := WrapHTTPError(echo.NewHTTPError(http.StatusBadRequest, "bad field"))
	assert.Equal(t, "bad field", custom.Message)
}

func TestCorrelationMiddleware(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(srv, http.MethodGet, "/health/live", "", correlation.HeaderName, "upstream-42")
	assert.Equal(t, "upstream-42", rec.Header().Get(correlation.HeaderName))

	rec = doRequest(srv, http.MethodGet, "/health/live", "")
	assert.Len(t, rec.Header().Get(correlation.HeaderName), 8)

	rec = doRequest(srv, http.MethodGet, "/health/live", "", correlation.HeaderName, strings.Repeat("x", 100))
	assert.Len(t, rec.Header().Get(correlation.HeaderName), 8)
}

func TestUnknownRouteIsStructured(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})
	rec := doRequest(srv, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"not_found"`)
}
