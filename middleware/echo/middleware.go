package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

// ValidateJSON validates the request body with v, stores the effective value
// in the request context, or returns 400 with the issues.
func ValidateJSON(v *skema.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			val, err := middleware.ReadBody(c.Request().Body, v, middleware.DefaultMaxBytes)
			if err != nil {
				if iss, ok := skema.AsIssues(err); ok {
					return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				}
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithValue(c.Request().Context(), val)))
			return next(c)
		}
	}
}

// GetValue fetches the validated value from echo.Context.
func GetValue(c echo.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request().Context())
}
