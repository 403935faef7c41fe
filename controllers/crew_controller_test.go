// controllers/crew_controller_test.go
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

// mockCrewRoster serves crews from a map and records what got created.
type mockCrewRoster struct {
	crews   map[string]*models.Crew
	points  int
	created *models.Crew
}

func (m *mockCrewRoster) ListCrews(_ context.Context) ([]models.Crew, error) {
	var crews []models.Crew
	for _, crew := range m.crews {
		crews = append(crews, *crew)
	}
	return crews, nil
}

func (m *mockCrewRoster) GetCrew(_ context.Context, crewID string) (*models.Crew, error) {
	return m.crews[crewID], nil
}

func (m *mockCrewRoster) CreateCrew(_ context.Context, crew models.Crew) (*models.Crew, error) {
	crew.ID = "new-crew"
	m.created = &crew
	return &crew, nil
}

func (m *mockCrewRoster) UpdateCrew(_ context.Context, crewID string, fields map[string]interface{}) error {
	return nil
}

func (m *mockCrewRoster) BackfillGames(_ context.Context, crewID, season string) error {
	return nil
}

func (m *mockCrewRoster) ListCrewGames(_ context.Context, crewID string) ([]models.CrewGame, error) {
	return nil, nil
}

func (m *mockCrewRoster) SetCrewGameResult(_ context.Context, crewID, gameID, participationStatus string, points int) error {
	return nil
}

func (m *mockCrewRoster) TotalPoints(_ context.Context, crewID string) (int, error) {
	return m.points, nil
}

func setupCrewRouter(roster *mockCrewRoster) *gin.Engine {
	router := setupTestRouter()
	cc := NewCrewController(roster)
	router.GET("/crews/:id", cc.Get)
	router.POST("/crews", cc.Create)
	return router
}

// Test: a crew named in the title field is accepted
func TestCreateCrew(t *testing.T) {
	roster := &mockCrewRoster{crews: map[string]*models.Crew{}}
	router := setupCrewRouter(roster)

	body := `{"title":"Els Torraors","status":"Activo","season":"2025"}`
	req, _ := http.NewRequest("POST", "/crews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotNil(t, roster.created)
	assert.Equal(t, "Els Torraors", roster.created.Title)
}

// Test: a crew without a title is rejected
func TestCreateCrew_MissingTitle(t *testing.T) {
	roster := &mockCrewRoster{crews: map[string]*models.Crew{}}
	router := setupCrewRouter(roster)

	req, _ := http.NewRequest("POST", "/crews", strings.NewReader(`{"season":"2025"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, roster.created)
}

// Test: an existing crew comes back with its accumulated points
func TestGetCrew(t *testing.T) {
	roster := &mockCrewRoster{
		crews:  map[string]*models.Crew{"c1": {ID: "c1", Title: "Els Torraors"}},
		points: 42,
	}
	router := setupCrewRouter(roster)

	req, _ := http.NewRequest("GET", "/crews/c1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Els Torraors"`)
	assert.Contains(t, w.Body.String(), `"totalPoints":42`)
}

// Test: a crew ID that resolves to nothing answers 404, not a null body
func TestGetCrew_NotFound(t *testing.T) {
	router := setupCrewRouter(&mockCrewRoster{crews: map[string]*models.Crew{}})

	req, _ := http.NewRequest("GET", "/crews/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Peña no encontrada")
}
