package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

// ValidateJSON validates the request body with v, stores the effective value
// in the request context and answers 400 with the issues on failure.
func ValidateJSON(v *skema.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, err := middleware.ReadBody(c.Request.Body, v, middleware.DefaultMaxBytes)
		if err != nil {
			if iss, ok := skema.AsIssues(err); ok {
				c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValue(c.Request.Context(), val))
		c.Next()
	}
}

// GetValue fetches the validated value from gin.Context.
func GetValue(c *gin.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request.Context())
}
