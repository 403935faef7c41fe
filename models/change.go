// Package models defines data structures used across the application.
// File: models/change.go
package models

import "time"

// FieldChange is one field's before/after pair inside a change record.
type FieldChange struct {
	PreviousValue interface{} `firestore:"previousValue" json:"previousValue"`
	NewValue      interface{} `firestore:"newValue" json:"newValue"`
}

// ChangeRecord is an audit entry written whenever a tracked entity is
// created, updated or deleted.
type ChangeRecord struct {
	ID            string                 `firestore:"-" json:"id"`
	EntityType    string                 `firestore:"entityType" json:"entityType"`
	EntityID      string                 `firestore:"entityId" json:"entityId"`
	EntityName    string                 `firestore:"entityName" json:"entityName"`
	ChangeType    string                 `firestore:"changeType" json:"changeType"`
	ChangesDetail map[string]FieldChange `firestore:"changesDetail" json:"changesDetail"`
	ModifiedBy    string                 `firestore:"modifiedBy" json:"modifiedBy"`
	Timestamp     time.Time              `firestore:"timestamp" json:"timestamp"`
}

// Change types for ChangeRecord.ChangeType.
const (
	ChangeTypeCreate = "create"
	ChangeTypeUpdate = "update"
	ChangeTypeDelete = "delete"
)
