// Package controllers: controllers/crew_controller.go
// Crew management and per-crew game results.
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/models"
)

// CrewRoster is the crew surface this controller needs.
type CrewRoster interface {
	ListCrews(ctx context.Context) ([]models.Crew, error)
	GetCrew(ctx context.Context, crewID string) (*models.Crew, error)
	CreateCrew(ctx context.Context, crew models.Crew) (*models.Crew, error)
	UpdateCrew(ctx context.Context, crewID string, fields map[string]interface{}) error
	BackfillGames(ctx context.Context, crewID, season string) error
	ListCrewGames(ctx context.Context, crewID string) ([]models.CrewGame, error)
	SetCrewGameResult(ctx context.Context, crewID, gameID, participationStatus string, points int) error
	TotalPoints(ctx context.Context, crewID string) (int, error)
}

// CrewController serves crews and their game results.
type CrewController struct {
	crews CrewRoster
}

// NewCrewController wires the controller to the crew service.
func NewCrewController(crews CrewRoster) *CrewController {
	return &CrewController{crews: crews}
}

// List returns every crew.
func (cc *CrewController) List(c *gin.Context) {
	crews, err := cc.crews.ListCrews(c.Request.Context())
	if err != nil {
		logger.Error.Printf("List crews: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar las peñas."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"crews": crews})
}

// Get returns one crew with its accumulated points.
func (cc *CrewController) Get(c *gin.Context) {
	crewID := c.Param("id")
	crew, err := cc.crews.GetCrew(c.Request.Context(), crewID)
	if err != nil {
		logger.Error.Printf("Get crew %s: %v", crewID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido cargar la peña."})
		return
	}
	if crew == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Peña no encontrada."})
		return
	}

	points, err := cc.crews.TotalPoints(c.Request.Context(), crewID)
	if err != nil {
		logger.Warn.Printf("Total points for crew %s: %v", crewID, err)
	}
	c.JSON(http.StatusOK, gin.H{"crew": crew, "totalPoints": points})
}

// Create stores a new crew. Active crews get the current game
// catalogue copied in on creation.
func (cc *CrewController) Create(c *gin.Context) {
	var crew models.Crew
	if err := c.ShouldBindJSON(&crew); err != nil || crew.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La peña necesita un nombre."})
		return
	}

	created, err := cc.crews.CreateCrew(c.Request.Context(), crew)
	if err != nil {
		logger.Error.Printf("Create crew: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido crear la peña."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"crew": created})
}

// Update patches crew fields.
func (cc *CrewController) Update(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	if err := cc.crews.UpdateCrew(c.Request.Context(), c.Param("id"), fields); err != nil {
		logger.Error.Printf("Update crew %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido actualizar la peña."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type backfillRequest struct {
	Season string `json:"season"`
}

// Backfill re-copies the game catalogue into a crew, filling whatever
// is missing without touching recorded results.
func (cc *CrewController) Backfill(c *gin.Context) {
	var req backfillRequest
	_ = c.ShouldBindJSON(&req)

	crewID := c.Param("id")
	if err := cc.crews.BackfillGames(c.Request.Context(), crewID, req.Season); err != nil {
		logger.Error.Printf("Backfill crew %s: %v", crewID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido sincronizar los juegos de la peña."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Games returns the crew's copies of the games, results included.
func (cc *CrewController) Games(c *gin.Context) {
	games, err := cc.crews.ListCrewGames(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Error.Printf("List crew %s games: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar los juegos de la peña."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

type crewResultRequest struct {
	ParticipationStatus string `json:"participationStatus"`
	Points              int    `json:"points"`
}

// SetResult records a crew's result for one game.
func (cc *CrewController) SetResult(c *gin.Context) {
	var req crewResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	crewID := c.Param("id")
	gameID := c.Param("gameId")
	if err := cc.crews.SetCrewGameResult(c.Request.Context(), crewID, gameID, req.ParticipationStatus, req.Points); err != nil {
		logger.Error.Printf("Set result crew %s game %s: %v", crewID, gameID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido guardar el resultado."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
