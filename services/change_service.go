// Package services: services/change_service.go
// Audit trail: a change record is written whenever a tracked entity is
// created, updated or deleted.
package services

import (
	"context"
	"fmt"
	"reflect"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// BuildChangesDetail diffs two field maps and returns the before/after
// pair for every field whose value changed. Fields present only on one
// side count as changed (nil on the other side).
func BuildChangesDetail(previous, next map[string]interface{}) map[string]models.FieldChange {
	detail := make(map[string]models.FieldChange)

	for field, prevValue := range previous {
		newValue, exists := next[field]
		if !exists {
			detail[field] = models.FieldChange{PreviousValue: prevValue, NewValue: nil}
			continue
		}
		if !reflect.DeepEqual(prevValue, newValue) {
			detail[field] = models.FieldChange{PreviousValue: prevValue, NewValue: newValue}
		}
	}
	for field, newValue := range next {
		if _, exists := previous[field]; !exists {
			detail[field] = models.FieldChange{PreviousValue: nil, NewValue: newValue}
		}
	}
	return detail
}

// ChangeService writes audit entries into the changes collection.
type ChangeService struct {
	client *firestore.Client
	retry  RetryConfig
}

// NewChangeService creates a ChangeService.
func NewChangeService(client *firestore.Client) *ChangeService {
	return &ChangeService{client: client, retry: DefaultRetryConfig()}
}

// Record writes one audit entry. The timestamp is server-assigned.
func (s *ChangeService) Record(ctx context.Context, record models.ChangeRecord) error {
	data := map[string]interface{}{
		"entityType":    record.EntityType,
		"entityId":      record.EntityID,
		"entityName":    record.EntityName,
		"changeType":    record.ChangeType,
		"changesDetail": record.ChangesDetail,
		"modifiedBy":    record.ModifiedBy,
		"timestamp":     firestore.ServerTimestamp,
	}
	ref := s.client.Collection(database.ChangesCollection).NewDoc()
	if _, err := ref.Create(ctx, data); err != nil {
		return fmt.Errorf("recording %s change for %s/%s: %w",
			record.ChangeType, record.EntityType, record.EntityID, err)
	}
	logger.Debug.Printf("[ChangeService.Record] %s %s/%s by %s",
		record.ChangeType, record.EntityType, record.EntityID, record.ModifiedBy)
	return nil
}

// ListForEntity returns the audit entries for one entity, newest first.
func (s *ChangeService) ListForEntity(ctx context.Context, entityType, entityID string) ([]models.ChangeRecord, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.ChangeRecord, error) {
		var records []models.ChangeRecord
		iter := s.client.Collection(database.ChangesCollection).
			Where("entityType", "==", entityType).
			Where("entityId", "==", entityID).
			OrderBy("timestamp", firestore.Desc).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var record models.ChangeRecord
			if err := doc.DataTo(&record); err != nil {
				return nil, err
			}
			record.ID = doc.Ref.ID
			records = append(records, record)
		}
		return records, nil
	})
}
