// Package controllers: controllers/game_controller.go
// Game catalogue management, including the mirror fan-out to crews.
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/models"
	"festes-portal/websocket"
)

// GameCatalogue is the game surface this controller needs.
type GameCatalogue interface {
	ListGames(ctx context.Context) ([]models.Game, error)
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	CreateGame(ctx context.Context, game models.Game) (*models.Game, error)
	UpdateGame(ctx context.Context, gameID string, fields map[string]interface{}) error
	UpdateGameStatusInCrews(ctx context.Context, gameID, newStatus string) error
	DeleteGame(ctx context.Context, gameID string) error
}

// GameController serves the games catalogue.
type GameController struct {
	games GameCatalogue
}

// NewGameController wires the controller to the game service.
func NewGameController(games GameCatalogue) *GameController {
	return &GameController{games: games}
}

// List returns every game.
func (gc *GameController) List(c *gin.Context) {
	games, err := gc.games.ListGames(c.Request.Context())
	if err != nil {
		logger.Error.Printf("List games: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar los juegos."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Get returns one game by ID.
func (gc *GameController) Get(c *gin.Context) {
	game, err := gc.games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Error.Printf("Get game %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido cargar el juego."})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Juego no encontrado."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game})
}

// Create stores a new game and mirrors it into every active crew.
func (gc *GameController) Create(c *gin.Context) {
	var game models.Game
	if err := c.ShouldBindJSON(&game); err != nil || game.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El juego necesita un nombre."})
		return
	}

	created, err := gc.games.CreateGame(c.Request.Context(), game)
	if err != nil {
		logger.Error.Printf("Create game: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido crear el juego."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"game": created})
}

// Update patches a game and keeps the crew mirrors in sync.
func (gc *GameController) Update(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	if err := gc.games.UpdateGame(c.Request.Context(), c.Param("id"), fields); err != nil {
		logger.Error.Printf("Update game %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido actualizar el juego."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type gameStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus changes a game's status and propagates it to the crews.
func (gc *GameController) SetStatus(c *gin.Context) {
	var req gameStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	gameID := c.Param("id")
	if err := gc.games.UpdateGame(c.Request.Context(), gameID, map[string]interface{}{"status": req.Status}); err != nil {
		logger.Error.Printf("Set game %s status: %v", gameID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido actualizar el estado del juego."})
		return
	}

	// Let connected clients refresh their game views.
	websocket.BroadcastMessage("", map[string]interface{}{
		"action": "gameStatusChanged",
		"gameId": gameID,
		"status": req.Status,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes a game and its copies under every crew.
func (gc *GameController) Delete(c *gin.Context) {
	if err := gc.games.DeleteGame(c.Request.Context(), c.Param("id")); err != nil {
		logger.Error.Printf("Delete game %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido eliminar el juego."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
