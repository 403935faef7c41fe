// Package models defines data structures used across the application.
// File: models/event.go
package models

import "time"

// ----------------------- event model -----------------------

// Event is a public activity. When NeedForm is set the event owns a
// formCamps subcollection describing the participation form, and each
// submission becomes an Inscription document.
type Event struct {
	ID         string    `firestore:"-" json:"id"`
	Title      string    `firestore:"title" json:"title"`
	Slug       string    `firestore:"slug" json:"slug"`
	EventURL   string    `firestore:"eventURL" json:"eventURL"`
	NeedForm   bool      `firestore:"needForm" json:"needForm"`
	CreatedAt  time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate time.Time `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}

// FormField describes one dynamically rendered field of an event's
// participation form (events/{id}/formCamps).
type FormField struct {
	ID       string `firestore:"-" json:"id"`
	FieldID  string `firestore:"fieldId" json:"fieldId"`
	Type     string `firestore:"type" json:"type"`
	Label    string `firestore:"label" json:"label"`
	Order    int    `firestore:"order" json:"order"`
	Required bool   `firestore:"required" json:"required"`
}

// Inscription is one submitted participation form.
type Inscription struct {
	ID        string                 `firestore:"-" json:"id"`
	EventID   string                 `firestore:"eventId" json:"eventId"`
	Values    map[string]interface{} `firestore:"values" json:"values"`
	CreatedAt time.Time              `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}
