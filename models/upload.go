// Package models defines data structures used across the application.
// File: models/upload.go
package models

import "time"

// Collaborator is a named sponsor/partner organisation with a stored logo.
type Collaborator struct {
	ID        string    `firestore:"-" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	FileURL   string    `firestore:"fileURL" json:"fileURL"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// Participant is a named event participant with an associated photo.
type Participant struct {
	ID        string    `firestore:"-" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	FileURL   string    `firestore:"fileURL" json:"fileURL"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// Upload records a stored object: its display name, the storage folder
// it went to and the resulting public URL.
type Upload struct {
	ID         string    `firestore:"-" json:"id"`
	Name       string    `firestore:"name" json:"name"`
	Folder     string    `firestore:"folder" json:"folder"`
	FileURL    string    `firestore:"fileURL" json:"fileURL"`
	UploadedBy string    `firestore:"uploadedBy" json:"uploadedBy"`
	CreatedAt  time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}
