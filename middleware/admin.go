package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	AdminModeKey    = "admin_mode"
	AdminModeHeader = "X-Admin-Mode"
	AdminModeQuery  = "admin"
)

// AdminMode reads the admin view toggle from the X-Admin-Mode header or the
// admin query parameter. It is a view switch, not a credential.
func AdminMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		v := c.GetHeader(AdminModeHeader)
		if v == "" {
			v = c.Query(AdminModeQuery)
		}
		on, _ := strconv.ParseBool(v)
		c.Set(AdminModeKey, on)
		c.Next()
	}
}

// RequireAdmin rejects requests made outside admin mode with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin mode required"})
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the request is in admin mode.
func IsAdmin(c *gin.Context) bool { return c.GetBool(AdminModeKey) }
