package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biocatchltd/hekshermgmt/pkg/errors"
	"github.com/biocatchltd/hekshermgmt/pkg/logging"
)

const DefaultIdentityHeader = "X-Forwarded-Email"

type IdentityConfig struct {
	// Header is the trusted header set by the fronting proxy. The service
	// itself performs no authentication; it trusts this header blindly.
	Header string
	// RequireUser rejects requests missing the header with 401.
	RequireUser bool
}

// IdentityMiddleware extracts the acting user from the trusted proxy header
// and stores it in the request context. It must run before every handler so
// downstream code (and the audit log) can attribute the request.
func IdentityMiddleware(cfg IdentityConfig) gin.HandlerFunc {
	header := cfg.Header
	if header == "" {
		header = DefaultIdentityHeader
	}

	return func(c *gin.Context) {
		user := c.GetHeader(header)

		if user == "" && cfg.RequireUser {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errors.ToErrorResponse(errors.ErrUnauthorized.WithDetail("message", "missing identity header")))
			return
		}

		if user != "" {
			ctx := logging.WithUser(c.Request.Context(), user)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}
