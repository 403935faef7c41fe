// Package database initialises the Firestore client used by all services.
// File: database/firestore.go
package database

import (
	"context"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"festes-portal/logger"
)

// Collection names used throughout the application. Subcollections
// (payments, games, formCamps, messages) hang off their parent document.
const (
	PartnersCollection      = "partners"
	PaymentsCollection      = "payments"
	SeasonsCollection       = "seasons"
	GamesCollection         = "games"
	CrewsCollection         = "crews"
	EventsCollection        = "events"
	FormFieldsCollection    = "formCamps"
	InscriptionsCollection  = "inscriptions"
	UsersCollection         = "users"
	CollaboratorsCollection = "collaborators"
	ParticipantsCollection  = "participants"
	UploadsCollection       = "uploads"
	ChangesCollection       = "changes"
	ChatsCollection         = "chats"
	MessagesCollection      = "messages"
)

// NewFirestoreClient connects to Firestore. When FIRESTORE_EMULATOR_HOST
// is set (local development, integration tests) it connects to the
// emulator without credentials; otherwise it uses the default credential
// chain against the configured project.
func NewFirestoreClient(ctx context.Context) (*firestore.Client, error) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		projectID = "festes-portal"
	}

	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		client, err := firestore.NewClient(ctx, projectID, option.WithoutAuthentication())
		if err != nil {
			return nil, err
		}
		logger.Info.Println("Connected to Firestore emulator")
		return client, nil
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	logger.Info.Printf("Connected to Firestore project %s", projectID)
	return client, nil
}
