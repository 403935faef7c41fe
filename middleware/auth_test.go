// file: middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Helper function to create a test router with session middleware
func setupAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("testsession", store))

	// Route that stores a logged-in session so tests can obtain its cookie
	router.GET("/seed", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set("userID", "user-1")
		_ = session.Save()
		c.String(http.StatusOK, "ok")
	})

	router.GET("/protected", AuthRequired, func(c *gin.Context) {
		c.String(http.StatusOK, "Área de socios")
	})

	return router
}

// Test: unauthenticated users get redirected to the public home page
func TestAuthRequired_Unauthenticated(t *testing.T) {
	router := setupAuthTestRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code, "Expected 302 Redirect")
	assert.Equal(t, "/", w.Header().Get("Location"))
}

// Test: a session with a userID passes through
func TestAuthRequired_Authenticated(t *testing.T) {
	router := setupAuthTestRouter()

	// Seed a session and capture its cookie
	seed := httptest.NewRecorder()
	seedReq, _ := http.NewRequest("GET", "/seed", nil)
	router.ServeHTTP(seed, seedReq)
	cookies := seed.Result().Cookies()
	assert.NotEmpty(t, cookies, "seed request should set a session cookie")

	req, _ := http.NewRequest("GET", "/protected", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Expected 200 OK for authenticated user")
	assert.Contains(t, w.Body.String(), "Área de socios")
}
