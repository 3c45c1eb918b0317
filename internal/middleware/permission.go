package middleware

import (
	"net/http"

	"github.com/foodgram/backend/internal/policy"
	"github.com/gin-gonic/gin"
)

// RequirePermission rejects the request with 403 unless pol grants the
// principal the request's method. A nil policy lets everything through.
func RequirePermission(pol policy.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pol == nil || pol.HasPermission(PrincipalFrom(c), c.Request.Method) {
			c.Next()
			return
		}
		message := "you do not have permission to perform this action"
		if !PrincipalFrom(c).Authenticated {
			message = "authentication credentials were not provided"
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": message,
		})
	}
}
