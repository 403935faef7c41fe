// File: middleware/staff_required.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"festes-portal/logger"
)

// StaffRequired checks that the session belongs to a staff account.
// Member accounts get a 401 JSON response.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		isStaff, ok := session.Get("isStaff").(bool)

		logger.Debug.Printf("[StaffRequired] isStaff=%v, ok=%v", isStaff, ok)

		if !ok || !isStaff {
			logger.Warn.Println("[StaffRequired] Unauthorized attempt blocked")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Se requiere una cuenta de administración"})
			c.Abort()
			return
		}

		c.Next()
	}
}
