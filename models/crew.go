// Package models defines data structures used across the application.
// File: models/crew.go
package models

import "time"

// Crew ("peña") is a sub-group of members that plays games and accrues
// points. Active crews carry a games subcollection mirroring the
// canonical game documents.
type Crew struct {
	ID          string    `firestore:"-" json:"id"`
	Title       string    `firestore:"title" json:"title"`
	Status      string    `firestore:"status" json:"status"`
	Responsable []string  `firestore:"responsable" json:"responsable"`
	Season      string    `firestore:"season" json:"season"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate  time.Time `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}
