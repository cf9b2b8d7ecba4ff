package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	apperrors "github.com/moviedata/reception/internal/platform/errors"
	"golang.org/x/time/rate"
)

const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter limits analysis requests per client IP; each one can fan
// out into hundreds of classifier calls.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			resp := apperrors.UnavailableError("rate limit exceeded").ToResponse()
			return c.JSON(http.StatusTooManyRequests, resp)
		},
	})
}
