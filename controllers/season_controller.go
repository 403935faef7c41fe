// Package controllers: controllers/season_controller.go
// Season management: the roster, creation and the activation fan-out.
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/models"
)

// SeasonRoster is the season surface this controller needs.
type SeasonRoster interface {
	ListSeasons(ctx context.Context) ([]models.Season, error)
	GetActiveSeason(ctx context.Context) (*models.Season, error)
	CreateSeason(ctx context.Context, season models.Season, activate bool, userID string) (*models.Season, models.FanOutReport, error)
	ActivateSeason(ctx context.Context, seasonID, userID string) (models.FanOutReport, error)
}

// SeasonController serves the seasons roster and activation.
type SeasonController struct {
	seasons SeasonRoster
}

// NewSeasonController wires the controller to the season service.
func NewSeasonController(seasons SeasonRoster) *SeasonController {
	return &SeasonController{seasons: seasons}
}

// List returns every season, newest first.
func (sc *SeasonController) List(c *gin.Context) {
	seasons, err := sc.seasons.ListSeasons(c.Request.Context())
	if err != nil {
		logger.Error.Printf("List seasons: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar las temporadas."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"seasons": seasons})
}

// Active returns the active season, or null when none is.
func (sc *SeasonController) Active(c *gin.Context) {
	season, err := sc.seasons.GetActiveSeason(c.Request.Context())
	if err != nil {
		logger.Error.Printf("Active season: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido cargar la temporada activa."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"season": season})
}

type createSeasonRequest struct {
	Season   models.Season `json:"season"`
	Activate bool          `json:"activate"`
}

// Create writes a new season; with activate set, the previous active
// season is deactivated and the payment fan-out runs. The fan-out
// report (created/skipped/failed) goes back to the caller so staff see
// what happened.
func (sc *SeasonController) Create(c *gin.Context) {
	var req createSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Season.SeasonYear == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	season, report, err := sc.seasons.CreateSeason(c.Request.Context(), req.Season, req.Activate, sessionUserID(c))
	if err != nil {
		logger.Error.Printf("Create season: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido crear la temporada.", "report": report})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"season": season, "report": report})
}

// Activate makes an existing season the active one and fans payments
// out to every approved partner.
func (sc *SeasonController) Activate(c *gin.Context) {
	report, err := sc.seasons.ActivateSeason(c.Request.Context(), c.Param("id"), sessionUserID(c))
	if err != nil {
		logger.Error.Printf("Activate season: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido activar la temporada."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
