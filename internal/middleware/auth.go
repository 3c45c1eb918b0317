package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/policy"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// PrincipalResolver turns a bearer token into the principal of its user.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (policy.Principal, error)
}

// Authenticate resolves the Authorization header into a principal. Requests
// without the header continue as anonymous; a header that does not resolve
// is rejected with 401.
func Authenticate(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			SetPrincipal(c, policy.Anonymous())
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || token == "" || (scheme != "Bearer" && scheme != "Token") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		p, err := resolver.ResolvePrincipal(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			logging.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected token")
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		SetPrincipal(c, p)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

// SetPrincipal stores p on the request context.
func SetPrincipal(c *gin.Context, p policy.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal stored by Authenticate, or an anonymous
// one when the middleware did not run.
func PrincipalFrom(c *gin.Context) policy.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(policy.Principal); ok {
			return p
		}
	}
	return policy.Anonymous()
}
