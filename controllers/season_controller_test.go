// controllers/season_controller_test.go
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

// mockSeasonRoster activates seasons in memory and reports a canned
// fan-out result.
type mockSeasonRoster struct {
	seasons    []models.Season
	report     models.FanOutReport
	activated  string
	activateBy string
}

func (m *mockSeasonRoster) ListSeasons(_ context.Context) ([]models.Season, error) {
	return m.seasons, nil
}

func (m *mockSeasonRoster) GetActiveSeason(_ context.Context) (*models.Season, error) {
	for i := range m.seasons {
		if m.seasons[i].Active {
			return &m.seasons[i], nil
		}
	}
	return nil, nil
}

func (m *mockSeasonRoster) CreateSeason(_ context.Context, season models.Season, activate bool, userID string) (*models.Season, models.FanOutReport, error) {
	season.ID = "new-season"
	season.Active = activate
	m.seasons = append(m.seasons, season)
	if activate {
		return &season, m.report, nil
	}
	return &season, models.FanOutReport{}, nil
}

func (m *mockSeasonRoster) ActivateSeason(_ context.Context, seasonID, userID string) (models.FanOutReport, error) {
	m.activated = seasonID
	m.activateBy = userID
	return m.report, nil
}

func setupSeasonRouter(roster *mockSeasonRoster) *gin.Engine {
	router := setupTestRouter()
	sc := NewSeasonController(roster)
	router.GET("/seasons", sc.List)
	router.GET("/seasons/active", sc.Active)
	router.POST("/seasons", sc.Create)
	router.POST("/seasons/:id/activate", sc.Activate)
	return router
}

// Test: creating with activate=true returns the fan-out report
func TestCreateSeason_WithActivation(t *testing.T) {
	roster := &mockSeasonRoster{report: models.FanOutReport{Created: 12, Skipped: 3, Failed: 1}}
	router := setupSeasonRouter(roster)

	body := `{"season":{"seasonYear":2026,"numberOfFractions":3,"totalPrice":80},"activate":true}`
	req, _ := http.NewRequest("POST", "/seasons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"created":12`)
	assert.Contains(t, w.Body.String(), `"skipped":3`)
	assert.Contains(t, w.Body.String(), `"failed":1`)
}

// Test: a season without a year is rejected
func TestCreateSeason_MissingYear(t *testing.T) {
	router := setupSeasonRouter(&mockSeasonRoster{})

	body := `{"season":{"totalPrice":80}}`
	req, _ := http.NewRequest("POST", "/seasons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Test: activation passes the season and the acting user through
func TestActivateSeason(t *testing.T) {
	roster := &mockSeasonRoster{report: models.FanOutReport{Created: 5}}
	router := setupSeasonRouter(roster)
	cookie := SetSession(router, "/set-session", map[string]interface{}{"userID": "staff-1"})

	req, _ := http.NewRequest("POST", "/seasons/s2026/activate", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s2026", roster.activated)
	assert.Equal(t, "staff-1", roster.activateBy)
	assert.Contains(t, w.Body.String(), `"created":5`)
}

// Test: with no active season the endpoint answers null
func TestActiveSeason_NoneActive(t *testing.T) {
	roster := &mockSeasonRoster{seasons: []models.Season{{ID: "s2024", SeasonYear: 2024}}}
	router := setupSeasonRouter(roster)

	req, _ := http.NewRequest("GET", "/seasons/active", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"season":null`)
}
