// Package middleware provides request filters and security checks for the application.
// File: middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"festes-portal/logger"
)

// -------------- authentication middleware --------------

// AuthRequired ensures the user is logged in. Requests without a
// userID in the session are redirected to the public home page.
// Usage:
//
//	protected.Use(middleware.AuthRequired)
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	userID, ok := session.Get("userID").(string)

	if !ok || userID == "" {
		logger.Warn.Printf("[AuthRequired] No user in session for %s", c.Request.URL.Path)
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return
	}

	logger.Debug.Println("[AuthRequired] User authenticated - proceeding with request")
	c.Next()
}
