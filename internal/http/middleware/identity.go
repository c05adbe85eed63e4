// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file propagates the acting user identity into the Gin context so the
// access logger and the rate limiter can key on it. Authentication itself is
// an external collaborator (gateway / session layer); this middleware only
// carries the already-established id.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity copies the X-User-ID header into the Gin context under the same
// key the logger and rate limiter read. An absent header leaves the context
// unset; downstream handlers reject the request if the operation needs a
// user.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader("X-User-ID")); uid != "" {
			c.Set(userIDKey, uid)
		}
		c.Next()
	}
}
