// controllers/game_controller_test.go
//go:build unit
// +build unit

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"festes-portal/models"
)

// mockGameCatalogue serves games from a map and records mutations.
type mockGameCatalogue struct {
	games   map[string]*models.Game
	updated map[string]interface{}
}

func (m *mockGameCatalogue) ListGames(_ context.Context) ([]models.Game, error) {
	var games []models.Game
	for _, game := range m.games {
		games = append(games, *game)
	}
	return games, nil
}

func (m *mockGameCatalogue) GetGame(_ context.Context, gameID string) (*models.Game, error) {
	return m.games[gameID], nil
}

func (m *mockGameCatalogue) CreateGame(_ context.Context, game models.Game) (*models.Game, error) {
	game.ID = "new-game"
	return &game, nil
}

func (m *mockGameCatalogue) UpdateGame(_ context.Context, gameID string, fields map[string]interface{}) error {
	m.updated = fields
	return nil
}

func (m *mockGameCatalogue) UpdateGameStatusInCrews(_ context.Context, gameID, newStatus string) error {
	return nil
}

func (m *mockGameCatalogue) DeleteGame(_ context.Context, gameID string) error {
	return nil
}

func setupGameRouter(catalogue *mockGameCatalogue) *gin.Engine {
	router := setupTestRouter()
	gc := NewGameController(catalogue)
	router.GET("/games/:id", gc.Get)
	router.POST("/games", gc.Create)
	router.POST("/games/:id/status", gc.SetStatus)
	return router
}

// Test: an existing game comes back with a 200
func TestGetGame(t *testing.T) {
	catalogue := &mockGameCatalogue{games: map[string]*models.Game{
		"g1": {ID: "g1", Name: "Gincana", Status: models.GameStatusActive},
	}}
	router := setupGameRouter(catalogue)

	req, _ := http.NewRequest("GET", "/games/g1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Gincana"`)
}

// Test: a game ID that resolves to nothing answers 404, not a null body
func TestGetGame_NotFound(t *testing.T) {
	router := setupGameRouter(&mockGameCatalogue{games: map[string]*models.Game{}})

	req, _ := http.NewRequest("GET", "/games/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Juego no encontrado")
}

// Test: a game without a name is rejected
func TestCreateGame_MissingName(t *testing.T) {
	router := setupGameRouter(&mockGameCatalogue{games: map[string]*models.Game{}})

	req, _ := http.NewRequest("POST", "/games", strings.NewReader(`{"season":"2025"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Test: a status change lands on the service as a status-only update
func TestSetGameStatus(t *testing.T) {
	catalogue := &mockGameCatalogue{games: map[string]*models.Game{}}
	router := setupGameRouter(catalogue)

	body := `{"status":"Completado"}`
	req, _ := http.NewRequest("POST", "/games/g1/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "Completado"}, catalogue.updated)
}
