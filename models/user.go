// Package models defines data structures used across the application.
// File: models/user.go
package models

import "time"

// User is an application account (not the same thing as a Partner:
// partners are registered members, users can log in).
type User struct {
	ID                 string    `firestore:"-" json:"id"`
	Name               string    `firestore:"name" json:"name"`
	LastName           string    `firestore:"lastName" json:"lastName"`
	Email              string    `firestore:"email" json:"email"`
	PasswordHash       string    `firestore:"passwordHash" json:"-"`
	Role               string    `firestore:"role" json:"role"`
	IsStaff            bool      `firestore:"isStaff" json:"isStaff"`
	EmailNotifications bool      `firestore:"emailNotifications" json:"emailNotifications"`
	PreferredLanguage  string    `firestore:"preferredLanguage" json:"preferredLanguage"`
	CreatedAt          time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate         time.Time `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}
