// Package models defines data structures used across the application.
// File: models/game.go
package models

import "time"

// ----------------------- game status -----------------------

// Game and crew status values. Stored verbatim, in Spanish, because the
// documents are shared with the public site.
const (
	GameStatusActive    = "Activo"
	GameStatusInactive  = "Inactivo"
	GameStatusPlanned   = "Planificado"
	GameStatusCompleted = "Completado"
)

// ----------------------- game model -----------------------

// Game is a scheduled competition between crews.
type Game struct {
	ID              string     `firestore:"-" json:"id"`
	Name            string     `firestore:"name" json:"name"`
	Description     string     `firestore:"description" json:"description"`
	Date            *time.Time `firestore:"date" json:"date"`
	Time            string     `firestore:"time" json:"time"`
	Location        string     `firestore:"location" json:"location"`
	MinParticipants int        `firestore:"minParticipants" json:"minParticipants"`
	Score           int        `firestore:"score" json:"score"`
	Season          string     `firestore:"season" json:"season"`
	Status          string     `firestore:"status" json:"status"`
	CreatedAt       time.Time  `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate      time.Time  `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}

// CrewGame is the denormalized copy of a Game stored under
// crews/{crewId}/games/{gameId}. It is a subset-mirror of the canonical
// game document, maintained by GameService, plus the crew's own
// participation fields.
type CrewGame struct {
	ID                  string     `firestore:"-" json:"id"`
	GameName            string     `firestore:"gameName" json:"gameName"`
	GameSeason          string     `firestore:"gameSeason" json:"gameSeason"`
	GameDate            *time.Time `firestore:"gameDate" json:"gameDate"`
	GameStatus          string     `firestore:"gameStatus" json:"gameStatus"`
	ParticipationStatus string     `firestore:"participationStatus" json:"participationStatus"`
	Points              int        `firestore:"points" json:"points"`
}
