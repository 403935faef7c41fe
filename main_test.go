// main_test.go
package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"festes-portal/controllers"
	"festes-portal/websocket"
)

// TestHealthEndpoint checks the load balancer health check.
func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", controllers.Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

// TestHeartbeatHandler_MissingUser rejects heartbeats without a user ID.
func TestHeartbeatHandler_MissingUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/chat/heartbeat", nil)
	w := httptest.NewRecorder()

	HeartbeatHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestHeartbeatHandler_TracksPresence records a user's heartbeat.
func TestHeartbeatHandler_TracksPresence(t *testing.T) {
	req := httptest.NewRequest("GET", "/chat/heartbeat?userId=user-42", nil)
	w := httptest.NewRecorder()

	HeartbeatHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, websocket.IsPresent("user-42"))
	assert.False(t, websocket.IsPresent("nobody"))
}
