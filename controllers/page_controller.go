// Package controllers: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health responds to load balancer health checks.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
