// Package models defines data structures used across the application.
// File: models/chat.go
package models

import "time"

// Chat is a support conversation, one per user, keyed by the user's ID.
type Chat struct {
	ID         string    `firestore:"-" json:"id"`
	UserID     string    `firestore:"userId" json:"userId"`
	UserName   string    `firestore:"userName" json:"userName"`
	IsActive   bool      `firestore:"isActive" json:"isActive"`
	CreatedAt  time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate time.Time `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}

// Message is one chat message (chats/{id}/messages).
type Message struct {
	ID        string    `firestore:"-" json:"id"`
	Text      string    `firestore:"text" json:"text"`
	Sender    string    `firestore:"sender" json:"sender"`
	IsRead    bool      `firestore:"isRead" json:"isRead"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}
