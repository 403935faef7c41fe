// Package controllers handles user authentication and session management.
// File: controllers/auth_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/models"
	"festes-portal/services"
)

// UserAccounts is the account surface the auth controller needs.
type UserAccounts interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User, password string) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID string, emailNotifications bool, preferredLanguage string) error
}

// AuthController serves login, logout and account registration.
type AuthController struct {
	users UserAccounts
}

// NewAuthController wires the controller to its account service.
func NewAuthController(users UserAccounts) *AuthController {
	return &AuthController{users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PerformLogin authenticates the user and stores the identity in the
// session. Staff accounts get the isStaff flag for the staff-only
// routes.
func (ac *AuthController) PerformLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		logger.Warn.Println("PerformLogin: Missing email or password")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Introduce email y contraseña."})
		return
	}

	user, err := ac.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.Warn.Printf("PerformLogin: Invalid login attempt for %s", req.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email o contraseña incorrectos."})
			return
		}
		logger.Error.Printf("PerformLogin: Authentication error for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno, inténtalo más tarde."})
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID)
	session.Set("userName", user.Name)
	session.Set("isStaff", user.IsStaff)
	if err := session.Save(); err != nil {
		logger.Error.Println("PerformLogin: Failed to save session:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno, inténtalo más tarde."})
		return
	}

	logger.Info.Printf("PerformLogin: User %s authenticated (staff=%v)", user.Email, user.IsStaff)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session and sends the user back to the public page.
func (ac *AuthController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("userID")
	if userID != nil {
		logger.Info.Printf("Logout: Logging out user %v", userID)
	}

	session.Clear()
	if err := session.Save(); err != nil {
		logger.Error.Printf("Logout: Error saving session during logout: %v", err)
	} else {
		logger.Info.Println("Logout: Session cleared successfully")
	}

	c.Redirect(http.StatusFound, "/")
}

type registerRequest struct {
	Name              string `json:"name"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// Register creates a regular (non-staff) account.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	user := models.User{
		Name:               req.Name,
		LastName:           req.LastName,
		Email:              req.Email,
		Role:               "member",
		IsStaff:            false,
		EmailNotifications: true,
		PreferredLanguage:  req.PreferredLanguage,
	}
	created, err := ac.users.CreateUser(c.Request.Context(), user, req.Password)
	if err != nil {
		logger.Warn.Printf("Register: Could not create account for %s: %v", req.Email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": created})
}

type preferencesRequest struct {
	EmailNotifications bool   `json:"emailNotifications"`
	PreferredLanguage  string `json:"preferredLanguage"`
}

// UpdatePreferences saves the logged-in user's notification settings.
func (ac *AuthController) UpdatePreferences(c *gin.Context) {
	session := sessions.Default(c)
	userID, ok := session.Get("userID").(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado."})
		return
	}

	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}
	if err := ac.users.UpdatePreferences(c.Request.Context(), userID, req.EmailNotifications, req.PreferredLanguage); err != nil {
		logger.Error.Printf("UpdatePreferences: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido guardar las preferencias."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
